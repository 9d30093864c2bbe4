package service

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/dandeat/barkir-core/internal/exchange/model"
)

// Wire date formats of the TPS Online schemas. Dates travel as MM/DD/YYYY
// except the header arrival date, which is YYYYMMDD.
const (
	wireDate      = "01/02/2006"
	wireDateTime  = "01/02/2006 15:04:05"
	wireDatePlain = "20060102"
)

func formatWireDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(wireDate)
}

func formatWireDateTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(wireDateTime)
}

func formatWireDatePlain(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(wireDatePlain)
}

// cocoDocument mirrors the cococont.xsd schema. Field order is fixed by the
// service; every element is emitted even when empty.
type cocoDocument struct {
	XMLName xml.Name `xml:"cococont.xsd DOCUMENT"`
	Body    cocoBody `xml:"COCOCONT"`
}

type cocoBody struct {
	Header  cocoHeader   `xml:"HEADER"`
	Details []cocoDetail `xml:"DETIL"`
}

type cocoHeader struct {
	KdDok       string `xml:"KD_DOK"`
	KdTps       string `xml:"KD_TPS"`
	NmAngkut    string `xml:"NM_ANGKUT"`
	NoVoyFlight string `xml:"NO_VOY_FLIGHT"`
	CallSign    string `xml:"CALL_SIGN"`
	TglTiba     string `xml:"TGL_TIBA"`
	KdGudang    string `xml:"KD_GUDANG"`
	RefNumber   string `xml:"REF_NUMBER"`
}

type cocoDetail struct {
	Cont cocoCont `xml:"CONT"`
}

type cocoCont struct {
	NoCont           string `xml:"NO_CONT"`
	UkCont           string `xml:"UK_CONT"`
	NoSegel          string `xml:"NO_SEGEL"`
	JnsCont          string `xml:"JNS_CONT"`
	NoBLAWB          string `xml:"NO_BL_AWB"`
	TglBLAWB         string `xml:"TGL_BL_AWB"`
	NoMasterBLAWB    string `xml:"NO_MASTER_BL_AWB"`
	TglMasterBLAWB   string `xml:"TGL_MASTER_BL_AWB"`
	IDConsignee      string `xml:"ID_CONSIGNEE"`
	Consignee        string `xml:"CONSIGNEE"`
	Bruto            string `xml:"BRUTO"`
	NoBC11           string `xml:"NO_BC11"`
	TglBC11          string `xml:"TGL_BC11"`
	NoPosBC11        string `xml:"NO_POS_BC11"`
	KdTimbun         string `xml:"KD_TIMBUN"`
	KdDokInout       string `xml:"KD_DOK_INOUT"`
	NoDokInout       string `xml:"NO_DOK_INOUT"`
	TglDokInout      string `xml:"TGL_DOK_INOUT"`
	WkInout          string `xml:"WK_INOUT"`
	KdSarAngkutInout string `xml:"KD_SAR_ANGKUT_INOUT"`
	NoPol            string `xml:"NO_POL"`
	FlContKosong     string `xml:"FL_CONT_KOSONG"`
	IsoCode          string `xml:"ISO_CODE"`
	PelMuat          string `xml:"PEL_MUAT"`
	PelTransit       string `xml:"PEL_TRANSIT"`
	PelBongkar       string `xml:"PEL_BONGKAR"`
	GudangTujuan     string `xml:"GUDANG_TUJUAN"`
	KodeKantor       string `xml:"KODE_KANTOR"`
	NoDaftarPabean   string `xml:"NO_DAFTAR_PABEAN"`
	TglDaftarPabean  string `xml:"TGL_DAFTAR_PABEAN"`
	NoSegelBC        string `xml:"NO_SEGEL_BC"`
	TglSegelBC       string `xml:"TGL_SEGEL_BC"`
	NoIjinTps        string `xml:"NO_IJIN_TPS"`
	TglIjinTps       string `xml:"TGL_IJIN_TPS"`
}

// BuildCocoXML serializes a gate movement exchange into the fixed-schema
// customs document.
func BuildCocoXML(ex *model.CocoExchange) (string, error) {
	doc := cocoDocument{
		Body: cocoBody{
			Header: cocoHeader{
				KdDok:       ex.DocCode,
				KdTps:       ex.TerminalCode,
				NmAngkut:    ex.CarrierName,
				NoVoyFlight: ex.VoyFlightNo,
				CallSign:    ex.CallSign,
				TglTiba:     formatWireDatePlain(ex.ArrivalDate),
				KdGudang:    ex.TerminalCode,
				RefNumber:   ex.RefNumber,
			},
		},
	}

	for _, d := range ex.Details {
		flKosong := "2"
		if d.EmptyContainer {
			flKosong = "1"
		}
		bruto := ""
		if d.Brutto > 0 {
			bruto = fmt.Sprintf("%g", d.Brutto)
		}
		doc.Body.Details = append(doc.Body.Details, cocoDetail{Cont: cocoCont{
			NoCont:           d.ContainerNo,
			UkCont:           d.ContainerSize,
			NoSegel:          d.SealNo,
			JnsCont:          d.ContainerType,
			NoMasterBLAWB:    d.MasterBLNo,
			TglMasterBLAWB:   formatWireDate(d.MasterBLDate),
			Bruto:            bruto,
			NoBC11:           d.BC11No,
			TglBC11:          formatWireDate(d.BC11Date),
			NoPosBC11:        d.PosNo,
			KdDokInout:       d.DocInOutCode,
			NoDokInout:       d.DocInOutNo,
			TglDokInout:      formatWireDate(d.DocInOutDate),
			WkInout:          formatWireDateTime(d.InOutTime),
			KdSarAngkutInout: d.TransportMode,
			NoPol:            d.PlateNo,
			FlContKosong:     flKosong,
			GudangTujuan:     d.DestWarehouse,
			KodeKantor:       d.OfficeCode,
			NoSegelBC:        d.SealNoBC,
			TglSegelBC:       formatWireDate(d.SealDateBC),
			NoIjinTps:        d.TPSLicenseNo,
			TglIjinTps:       formatWireDate(d.TPSLicenseDate),
		}})
	}

	out, err := xml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal gate movement document: %w", err)
	}
	return string(out), nil
}
