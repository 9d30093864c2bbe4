package beacukai

import (
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
)

var (
	// ErrTransport marks connection, timeout and non-2xx failures.
	ErrTransport = errors.New("beacukai transport error")
	// ErrProtocol marks malformed responses and missing expected elements.
	ErrProtocol = errors.New("beacukai protocol error")
)

// extractResultText walks the SOAP response and returns the character data
// of the named result element. The walk is tolerant of namespaces: elements
// are matched by local name only.
func extractResultText(soapBody, resultName string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(soapBody))
	dec.Strict = false

	inResult := false
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: malformed response: %v", ErrProtocol, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == resultName {
				inResult = true
			}
		case xml.EndElement:
			if t.Name.Local == resultName && inResult {
				return text.String(), nil
			}
		case xml.CharData:
			if inResult {
				text.Write(t)
			}
		}
	}
	return "", fmt.Errorf("%w: response is missing %s element", ErrProtocol, resultName)
}

// PLPDecision is the decision payload embedded in a PLP poll response.
type PLPDecision struct {
	PLPNo        string
	PLPDate      string // YYYYMMDD as sent by the service
	Approved     bool
	RejectReason string
	HasContainer bool
}

// ParsePLPDecision parses the escaped XML fragment a PLP poll returns.
// The fragment carries NO_PLP, TGL_PLP, FL_SETUJU and ALASAN_REJECT leaves
// plus zero or more CONT detail elements; a missing CONT element or an
// FL_SETUJU of "T" both mean rejection.
func ParsePLPDecision(fragment string) (*PLPDecision, error) {
	dec := xml.NewDecoder(strings.NewReader(html.UnescapeString(fragment)))
	dec.Strict = false

	values := map[string]string{}
	decision := &PLPDecision{}
	var current string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed decision fragment: %v", ErrProtocol, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			current = t.Name.Local
			if current == "CONT" {
				decision.HasContainer = true
			}
		case xml.EndElement:
			current = ""
		case xml.CharData:
			if current != "" {
				values[current] += string(t)
			}
		}
	}

	decision.PLPNo = strings.TrimSpace(values["NO_PLP"])
	decision.PLPDate = strings.TrimSpace(values["TGL_PLP"])
	decision.RejectReason = strings.TrimSpace(values["ALASAN_REJECT"])
	decision.Approved = strings.TrimSpace(values["FL_SETUJU"]) != "T" && decision.HasContainer

	if decision.PLPNo == "" && decision.PLPDate == "" {
		return nil, fmt.Errorf("%w: decision fragment carries no PLP number or date", ErrProtocol)
	}
	return decision, nil
}
