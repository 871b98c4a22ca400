package engine

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionSingleChoice   QuestionType = "single_choice"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionImage          QuestionType = "image"
	QuestionYesNo          QuestionType = "yes_no"
	QuestionScale          QuestionType = "scale"
)

// Tree is an authored diagnostic flow for one service-category problem.
// Trees are loaded read-only; the engine never mutates them.
type Tree struct {
	ServiceCategory   string                `json:"serviceCategory"`
	ProblemName       string                `json:"problemName"`
	Questions         []Question            `json:"questions"`
	DIYSolutions      []DIYSolution         `json:"diySolutions,omitempty"`
	UrgencyIndicators []UrgencyIndicator    `json:"urgencyIndicators,omitempty"`
	TechnicianPrep    TechnicianPreparation `json:"technicianPreparation"`
}

// Question is a single node in the tree, identified by an ID unique within it.
type Question struct {
	ID             string       `json:"id"`
	Text           string       `json:"text"`
	Type           QuestionType `json:"type"`
	Required       bool         `json:"required"`
	AllowsMultiple bool         `json:"allowsMultiple,omitempty"`
	Options        []Option     `json:"options,omitempty"`
}

// Option is one selectable answer. NextQuestionID is a weak reference resolved
// by ID within the same tree; empty means the traversal ends here.
type Option struct {
	Value          string   `json:"value"`
	Label          string   `json:"label"`
	NextQuestionID string   `json:"nextQuestionId,omitempty"`
	IsDIYCandidate bool     `json:"isDiyCandidate,omitempty"`
	Severity       Severity `json:"severity,omitempty"`
}

// DIYSolution describes a self-service fix. Condition maps question IDs to the
// answer value required for the solution to qualify; every entry must match.
type DIYSolution struct {
	Condition      map[string]string `json:"condition"`
	Title          string            `json:"title"`
	Description    string            `json:"description,omitempty"`
	Steps          []string          `json:"steps"`
	Tools          []string          `json:"tools,omitempty"`
	Materials      []string          `json:"materials,omitempty"`
	EstimatedTime  string            `json:"estimatedTime,omitempty"`
	Difficulty     string            `json:"difficulty,omitempty"`
	SafetyWarnings []string          `json:"safetyWarnings,omitempty"`
}

// UrgencyIndicator maps a specific answer to an urgency level used when
// routing to a technician.
type UrgencyIndicator struct {
	QuestionID  string  `json:"questionId"`
	AnswerValue string  `json:"answerValue"`
	Urgency     Urgency `json:"urgency"`
}

// TechnicianPreparation is the static hint bundle surfaced when no DIY
// solution applies.
type TechnicianPreparation struct {
	LikelyCauses         []string `json:"likelyCauses,omitempty"`
	ToolsNeeded          []string `json:"toolsNeeded,omitempty"`
	CommonParts          []string `json:"commonParts,omitempty"`
	EstimatedJobDuration string   `json:"estimatedJobDuration,omitempty"`
	Complexity           string   `json:"complexity,omitempty"`
}

// Session is the caller-owned state of one diagnostic interaction. The engine
// mutates only the session passed in; it keeps no state of its own.
type Session struct {
	Answers           map[string][]string `json:"answers"`
	CurrentQuestionID string              `json:"currentQuestionId,omitempty"`
	Visited           []string            `json:"visited"`
	CycleDetected     bool                `json:"cycleDetected,omitempty"`
	Done              bool                `json:"done"`
}

func (s *Session) visited(id string) bool {
	for _, v := range s.Visited {
		if v == id {
			return true
		}
	}
	return false
}

// Outcome tags a resolution as self-service or technician routing.
type Outcome string

const (
	OutcomeDIY        Outcome = "diy"
	OutcomeTechnician Outcome = "technician"
)

// Result is the resolution of a finished traversal. Solution is set only for
// OutcomeDIY; Preparation only for OutcomeTechnician.
type Result struct {
	Outcome       Outcome                `json:"outcome"`
	Urgency       Urgency                `json:"urgency"`
	Solution      *DIYSolution           `json:"solution,omitempty"`
	Preparation   *TechnicianPreparation `json:"preparation,omitempty"`
	CycleDetected bool                   `json:"cycleDetected,omitempty"`
}

// questionIndex builds the id-to-position lookup used for branch resolution.
func questionIndex(t *Tree) map[string]int {
	idx := make(map[string]int, len(t.Questions))
	for i, q := range t.Questions {
		if _, ok := idx[q.ID]; !ok {
			idx[q.ID] = i
		}
	}
	return idx
}
