package cache

// ScheduleKeyOpts holds the options that change the outcome of a sort.
type ScheduleKeyOpts struct {
	Batching  bool `json:"batching"`
	BreakWeak bool `json:"break_weak"`
}

// Keyer generates cache keys.
type Keyer interface {
	// ScheduleKey returns the key for the schedule of a plan whose
	// canonical encoding hashes to planHash.
	ScheduleKey(planHash string, opts ScheduleKeyOpts) string
}

// DefaultKeyer produces unprefixed keys of the form "schedule:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ScheduleKey hashes the plan hash together with opts.
func (DefaultKeyer) ScheduleKey(planHash string, opts ScheduleKeyOpts) string {
	return hashKey("schedule", planHash, opts)
}
