package service

import (
	"encoding/xml"
	"fmt"

	"github.com/dandeat/barkir-core/internal/exchange/model"
)

// plpDocument mirrors the loadplp.xsd schema.
type plpDocument struct {
	XMLName xml.Name `xml:"loadplp.xsd DOCUMENT"`
	Body    plpBody  `xml:"LOADPLP"`
}

type plpBody struct {
	Header plpHeader `xml:"HEADER"`
	Detail plpDetail `xml:"DETIL"`
}

type plpHeader struct {
	KdKantor     string `xml:"KD_KANTOR"`
	TipeData     string `xml:"TIPE_DATA"`
	KdTpsAsal    string `xml:"KD_TPS_ASAL"`
	RefNumber    string `xml:"REF_NUMBER"`
	NoSurat      string `xml:"NO_SURAT"`
	TglSurat     string `xml:"TGL_SURAT"`
	GudangAsal   string `xml:"GUDANG_ASAL"`
	KdTpsTujuan  string `xml:"KD_TPS_TUJUAN"`
	GudangTujuan string `xml:"GUDANG_TUJUAN"`
	KdAlasanPlp  string `xml:"KD_ALASAN_PLP"`
	YorAsal      string `xml:"YOR_ASAL"`
	YorTujuan    string `xml:"YOR_TUJUAN"`
	CallSign     string `xml:"CALL_SIGN"`
	NmAngkut     string `xml:"NM_ANGKUT"`
	NoVoyFlight  string `xml:"NO_VOY_FLIGHT"`
	TglTiba      string `xml:"TGL_TIBA"`
	NoBC11       string `xml:"NO_BC11"`
	TglBC11      string `xml:"TGL_BC11"`
	NmPemohon    string `xml:"NM_PEMOHON"`
}

type plpDetail struct {
	Cont plpCont `xml:"CONT"`
}

type plpCont struct {
	NoCont string `xml:"NO_CONT"`
	UkCont string `xml:"UK_CONT"`
}

// BuildPLPXML serializes a relocation permit request into the fixed-schema
// customs document.
func BuildPLPXML(req *model.PlpRequest) (string, error) {
	doc := plpDocument{
		Body: plpBody{
			Header: plpHeader{
				KdKantor:     req.OfficeCode,
				TipeData:     req.DataType,
				KdTpsAsal:    req.OriginTPS,
				RefNumber:    req.RefNumber,
				NoSurat:      req.SuratNo,
				TglSurat:     formatWireDate(req.SuratDate),
				GudangAsal:   req.OriginGudang,
				KdTpsTujuan:  req.DestTPS,
				GudangTujuan: req.DestGudang,
				KdAlasanPlp:  req.ReasonCode,
				YorAsal:      req.YorAsal,
				YorTujuan:    req.YorTujuan,
				CallSign:     req.CallSign,
				NmAngkut:     req.CarrierName,
				NoVoyFlight:  req.VoyFlightNo,
				TglTiba:      formatWireDate(req.ArrivalDate),
				NoBC11:       req.BC11No,
				TglBC11:      formatWireDate(req.BC11Date),
				NmPemohon:    req.ApplicantName,
			},
			Detail: plpDetail{Cont: plpCont{
				NoCont: req.ContainerNo,
				UkCont: req.ContainerSize,
			}},
		},
	}

	out, err := xml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal relocation permit document: %w", err)
	}
	return string(out), nil
}
