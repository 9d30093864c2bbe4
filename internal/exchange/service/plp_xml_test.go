package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dandeat/barkir-core/internal/exchange/model"
)

func TestBuildPLPXML(t *testing.T) {
	surat := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	arrival := time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC)
	req := &model.PlpRequest{
		RefNumber:     "PLP000042",
		SuratNo:       "00017/PLP/UTPK/V/2025",
		SuratDate:     &surat,
		OfficeCode:    "051000",
		DataType:      "1",
		OriginTPS:     "TPS1",
		OriginGudang:  "GDG1",
		DestTPS:       "TPS2",
		DestGudang:    "GDG2",
		ReasonCode:    "4",
		YorAsal:       "95.5",
		YorTujuan:     "40",
		CallSign:      "YBNM",
		CarrierName:   "MV MERATUS",
		VoyFlightNo:   "V012",
		ArrivalDate:   &arrival,
		ApplicantName: "PT Terminal Petikemas",
		ContainerNo:   "TGHU1234567",
		ContainerSize: "20",
	}

	out, err := BuildPLPXML(req)
	require.NoError(t, err)

	assert.Contains(t, out, `xmlns="loadplp.xsd"`)
	assert.Contains(t, out, "<KD_KANTOR>051000</KD_KANTOR>")
	assert.Contains(t, out, "<TIPE_DATA>1</TIPE_DATA>")
	assert.Contains(t, out, "<REF_NUMBER>PLP000042</REF_NUMBER>")
	assert.Contains(t, out, "<NO_SURAT>00017/PLP/UTPK/V/2025</NO_SURAT>")
	assert.Contains(t, out, "<TGL_SURAT>05/02/2025</TGL_SURAT>")
	assert.Contains(t, out, "<KD_ALASAN_PLP>4</KD_ALASAN_PLP>")
	assert.Contains(t, out, "<TGL_TIBA>04/28/2025</TGL_TIBA>")
	assert.Contains(t, out, "<NM_PEMOHON>PT Terminal Petikemas</NM_PEMOHON>")
	assert.Contains(t, out, "<DETIL><CONT><NO_CONT>TGHU1234567</NO_CONT><UK_CONT>20</UK_CONT></CONT></DETIL>")
}
