package authstate

// Phase is the profile-resolution state machine position. Resolution walks
// Idle -> Authenticating -> PrimaryLoaded -> one branch -> Ready; Failed is
// reachable only from the primary profile fetch. Sub-profile trouble never
// fails the chain.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAuthenticating
	PhasePrimaryLoaded
	PhaseVendorBranch
	PhaseStaffBranch
	PhaseNoBranch
	PhaseReady
	PhaseFailed
)

var phaseNames = map[Phase]string{
	PhaseIdle:           "idle",
	PhaseAuthenticating: "authenticating",
	PhasePrimaryLoaded:  "primary_loaded",
	PhaseVendorBranch:   "vendor_branch",
	PhaseStaffBranch:    "staff_branch",
	PhaseNoBranch:       "no_branch",
	PhaseReady:          "ready",
	PhaseFailed:         "failed",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the phase is a resting state rather than a
// step mid-resolution.
func (p Phase) Terminal() bool {
	return p == PhaseIdle || p == PhaseReady || p == PhaseFailed
}
