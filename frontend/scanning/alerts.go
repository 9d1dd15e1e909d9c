package scanning

import (
	"fmt"
	"time"
)

// Severity grades a pending alert for the operator.
type Severity string

const (
	SeverityPositive    Severity = "positive"
	SeverityWarning     Severity = "warning"
	SeverityInformation Severity = "information"
	SeverityNegative    Severity = "negative"
)

// closedAlertLineID keys the terminal document-closed alert, which has no
// backing document line.
const closedAlertLineID = "__document_closed__"

// SystemMessage is one downstream system's acceptance notice.
type SystemMessage struct {
	System   string   `json:"system"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// AcceptFlags reports which downstream systems accepted a line.
type AcceptFlags struct {
	Warehouse   bool
	Fulfillment bool
	Showroom    bool
}

// Classification is the reduced alert display state for a line result.
type Classification struct {
	Message  string          `json:"message"`
	Severity Severity        `json:"severity,omitempty"`
	Multiple []SystemMessage `json:"multiple"`
}

// Classify reduces acceptance flags to alert display fields. Exactly one flag
// yields a single message with its mapped severity. Two or more yield one
// message per system and no top-level message; the two shapes are distinct
// and must not be merged into a summary.
func Classify(flags AcceptFlags, itemCode string) Classification {
	messages := make([]SystemMessage, 0, 3)
	if flags.Warehouse {
		messages = append(messages, SystemMessage{
			System:   "warehouse",
			Severity: SeverityPositive,
			Message:  fmt.Sprintf("Item %s accepted into warehouse stock", itemCode),
		})
	}
	if flags.Fulfillment {
		messages = append(messages, SystemMessage{
			System:   "fulfillment",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Item %s routed to fulfillment", itemCode),
		})
	}
	if flags.Showroom {
		messages = append(messages, SystemMessage{
			System:   "showroom",
			Severity: SeverityInformation,
			Message:  fmt.Sprintf("Item %s directed to showroom", itemCode),
		})
	}

	switch len(messages) {
	case 0:
		return Classification{Multiple: []SystemMessage{}}
	case 1:
		return Classification{
			Message:  messages[0].Message,
			Severity: messages[0].Severity,
			Multiple: []SystemMessage{},
		}
	default:
		return Classification{Multiple: messages}
	}
}

// PendingAlert is the in-memory record for the most recent (or under-edit)
// document line produced by a scan.
type PendingAlert struct {
	LineID     string          `json:"lineId"`
	ItemCode   string          `json:"itemCode,omitempty"`
	Barcode    string          `json:"barcode,omitempty"`
	Quantity   float64         `json:"quantity"`
	Unit       Unit            `json:"unit,omitempty"`
	NumInBuy   float64         `json:"numInBuy,omitempty"`
	BuyUnitMsr string          `json:"buyUnitMsr,omitempty"`
	PurPackUn  float64         `json:"purPackUn,omitempty"`
	PurPackMsr string          `json:"purPackMsr,omitempty"`
	Comment    string          `json:"comment,omitempty"`
	Canceled   bool            `json:"canceled"`
	Severity   Severity        `json:"severity,omitempty"`
	Message    string          `json:"message"`
	Multiple   []SystemMessage `json:"multiple"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ApplyClassification overwrites the alert display fields from a fresh
// backend result.
func (a *PendingAlert) ApplyClassification(c Classification) {
	a.Message = c.Message
	a.Severity = c.Severity
	a.Multiple = c.Multiple
}

// UpsertAlert merges an alert into the session list keyed by line identity:
// replace in place when present, otherwise prepend (most recent first).
func (s *Session) UpsertAlert(alert PendingAlert) {
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	for i := range s.Alerts {
		if s.Alerts[i].LineID == alert.LineID {
			s.Alerts[i] = alert
			return
		}
	}
	s.Alerts = append([]PendingAlert{alert}, s.Alerts...)
}

// FindAlert returns the alert for a line, if recorded.
func (s *Session) FindAlert(lineID string) (PendingAlert, bool) {
	for _, alert := range s.Alerts {
		if alert.LineID == lineID {
			return alert, true
		}
	}
	return PendingAlert{}, false
}
