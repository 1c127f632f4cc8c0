package domain

type StepStatus string

const (
	StepStatusPending   StepStatus = "Pending"
	StepStatusCompleted StepStatus = "Completed"
	StepStatusDelayed   StepStatus = "Delayed"
)

// TelemetryStep is one node in a batch's progress tree. StepID is a stable
// surrogate identifier; Name is the display label and the match key for
// incoming updates. A step with no SubTracks is a leaf; an empty slice and a
// nil slice mean the same thing. A composite step's status is independently
// settable and is never derived from its children.
type TelemetryStep struct {
	StepID      string          `json:"step_id"`
	Name        string          `json:"step_name"`
	Status      StepStatus      `json:"status"`
	VarianceHrs float64         `json:"variance_hrs"`
	Timestamp   string          `json:"timestamp"`
	SubTracks   []TelemetryStep `json:"sub_tracks,omitempty"`
}

// OrderSummary is the denormalized display header held alongside a tree.
// It is not authoritative; the durable store owns the order record.
type OrderSummary struct {
	OrderID       string `json:"order_id"`
	Product       string `json:"product_name"`
	Quantity      int    `json:"quantity"`
	SupplierName  string `json:"supplier_name"`
	DatePromised  string `json:"date_promised"`
	DateProjected string `json:"date_actual_projected"`
}

// TrackerEntry is one live cache record, keyed by batch id. CompletionSynced
// records that the durable COMPLETED write has succeeded, so the completion
// side effect fires at most once per transition.
type TrackerEntry struct {
	BatchID          string          `json:"batch_id"`
	Order            OrderSummary    `json:"order"`
	Telemetry        []TelemetryStep `json:"telemetry"`
	CompletionSynced bool            `json:"-"`
}

// Clone deep-copies the entry so cache snapshots never alias live state.
func (e TrackerEntry) Clone() TrackerEntry {
	out := e
	out.Telemetry = cloneSteps(e.Telemetry)
	return out
}

func cloneSteps(steps []TelemetryStep) []TelemetryStep {
	if len(steps) == 0 {
		return nil
	}
	out := make([]TelemetryStep, len(steps))
	for i, s := range steps {
		out[i] = s
		out[i].SubTracks = cloneSteps(s.SubTracks)
	}
	return out
}

// UpdateSource selects the step-name matching rule for an update.
type UpdateSource string

const (
	// SourceERP matches step names exactly.
	SourceERP UpdateSource = "ERP"
	// SourceOCR matches case-insensitively on substring, since names
	// extracted from scanned documents are noisy.
	SourceOCR UpdateSource = "OCR"
)

type StepUpdate struct {
	BatchID     string
	StepName    string
	Status      StepStatus
	VarianceHrs float64
	Source      UpdateSource
}

type UpdateResult struct {
	Applied      bool
	AllCompleted bool
}
