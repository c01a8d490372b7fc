package models

type CheckinOutcome string

const (
	CheckinSuccess     CheckinOutcome = "checked_in"
	CheckinValid       CheckinOutcome = "valid"
	CheckinNotFound    CheckinOutcome = "not_found"
	CheckinAlreadyUsed CheckinOutcome = "already_used"
	CheckinCancelled   CheckinOutcome = "cancelled"
)

// Message is the user-facing text for the staff at the door.
func (o CheckinOutcome) Message() string {
	switch o {
	case CheckinSuccess:
		return "✅ Check-in realizado com sucesso!"
	case CheckinValid:
		return "✅ Ingresso válido"
	case CheckinNotFound:
		return "Ingresso não encontrado"
	case CheckinAlreadyUsed:
		return "Ingresso já foi utilizado!"
	case CheckinCancelled:
		return "Ingresso cancelado!"
	default:
		return string(o)
	}
}

type CheckinRequest struct {
	Code string `json:"code"`
}

type CheckinResult struct {
	Code    string         `json:"code"`
	Outcome CheckinOutcome `json:"outcome"`
	Message string         `json:"message"`
	Order   *Order         `json:"order,omitempty"`
}

func NewCheckinResult(code string, outcome CheckinOutcome, order *Order) *CheckinResult {
	return &CheckinResult{Code: code, Outcome: outcome, Message: outcome.Message(), Order: order}
}
