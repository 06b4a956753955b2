package intake

// #region message

// Message is one turn of the intake conversation.
type Message struct {
	Role    string `json:"role"` // "user" | "assistant" | "system"
	Content string `json:"content"`
}

// #endregion message

// #region form

// Form holds the structured data collected during basic intake. Collection
// itself belongs to the conversational layer; this package only decides
// whether enough is present to move from collecting to deciding.
type Form struct {
	FullName      string   `json:"full_name"`
	Birthday      string   `json:"birthday"`
	Prescriptions []string `json:"prescriptions"`
	Allergies     []string `json:"allergies"`
	Conditions    []string `json:"conditions"`
	VisitReasons  []string `json:"visit_reasons"`

	DetailedSymptoms string `json:"detailed_symptoms,omitempty"`
}

// #endregion form

// #region route-levels

// Care levels the router can assign.
const (
	RouteEmergency   = "emergency"
	RouteUrgent      = "urgent"
	RouteRoutine     = "routine"
	RouteSelfCare    = "self_care"
	RouteInformation = "information"
)

// #endregion route-levels
