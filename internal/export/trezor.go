package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
)

// TrezorContentType is the media type of TREZOR payloads.
const TrezorContentType = "application/xml"

const trezorNamespace = "http://trezor.mf.gov.pl/ReportsSchema"

// TrezorHeader identifies the reporting entity of a payload.
type TrezorHeader struct {
	EntityID   string
	EntityName string
	Part       string
}

// DefaultTrezorHeader is used when no reporting entity is configured.
var DefaultTrezorHeader = TrezorHeader{EntityID: "19484", EntityName: "33 - DF MRiRW", Part: "33"}

type trezorReport struct {
	XMLName xml.Name   `xml:"ns:TREZOR3_REP_ITF"`
	NS      string     `xml:"xmlns:ns,attr"`
	Line    trezorLine `xml:"TREZOR3_REP_ITF_LINE"`
}

type trezorLine struct {
	ProcessCode      string      `xml:"PROCESS_CODE"`
	ProcessStageCode string      `xml:"PROCESS_STAGE_CODE"`
	EntityType       string      `xml:"ENTITY_TYPE"`
	EntityID         string      `xml:"ENTITY_ID"`
	EntityName       string      `xml:"ENTITY_NAME"`
	Part             string      `xml:"PART"`
	Symbol           string      `xml:"SYMBOL"`
	Year             int         `xml:"YEAR"`
	VersionKey       string      `xml:"CUSTOM_VERSION_KEY_COMPONENT"`
	Description      string      `xml:"DESCRIPTION"`
	Rows             []trezorRow `xml:"BALANCE>BALANCE_ROW"`
}

type trezorRow struct {
	ChapterCode string `xml:"CHAPTER_CODE"`
	Attr01      string `xml:"UATTRIBUTE01"`
	Attr02      string `xml:"UATTRIBUTE02"`
	Attr03      string `xml:"UATTRIBUTE03"`
	Section     string `xml:"UATTRIBUTE05"`
	Division    string `xml:"UATTRIBUTE06"`
	Chapter     string `xml:"UATTRIBUTE07"`
	Attr08      string `xml:"UATTRIBUTE08"`
	Attr09      string `xml:"UATTRIBUTE09"`
	Attr10      string `xml:"UATTRIBUTE10"`
	Amount01    string `xml:"AMOUNT01"`
	Amount02    string `xml:"AMOUNT02"`
	Amount03    string `xml:"AMOUNT03"`
}

// BuildTrezor renders one BALANCE_ROW per item in the RB28WPRUE report layout.
func BuildTrezor(items []domain.BudgetItem, header TrezorHeader, year int, generatedAt time.Time) ([]byte, error) {
	report := trezorReport{
		NS: trezorNamespace,
		Line: trezorLine{
			ProcessCode:      "RB28WPRUE.REP",
			ProcessStageCode: "RB28WPRUE.REP.VAL",
			EntityType:       "TR",
			EntityID:         header.EntityID,
			EntityName:       header.EntityName,
			Part:             header.Part,
			Symbol:           "-",
			Year:             year,
			VersionKey:       "M01." + strconv.Itoa(year),
			Description:      "wer. 1 @ " + generatedAt.Format(time.DateTime),
			Rows:             make([]trezorRow, 0, len(items)),
		},
	}
	for _, item := range items {
		report.Line.Rows = append(report.Line.Rows, trezorRow{
			ChapterCode: "RB28WPRUE.P",
			Attr01:      "RB28WPRUE.P.1",
			Attr02:      "WPR",
			Attr03:      "PROW_2014-2020",
			Section:     codeOr(item.BudgetSection, "00"),
			Division:    codeOr(item.BudgetDivision, "000"),
			Chapter:     codeOr(item.BudgetChapter, "00000"),
			Attr08:      "7",
			Attr09:      "2007",
			Attr10:      "1",
			Amount01:    "0.00",
			Amount02:    item.Amount.StringFixed(2),
			Amount03:    "0.00",
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", " ")
	if err := enc.Encode(report); err != nil {
		return nil, fmt.Errorf("failed to encode trezor payload: %w", err)
	}
	return buf.Bytes(), nil
}

func codeOr(label, fallback string) string {
	if code := domain.ExtractCode(label); code != "" {
		return code
	}
	return fallback
}
