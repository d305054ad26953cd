package testevents

// Generator defaults.
const (
	DefaultPlayers          = 64
	DefaultSeasons          = 3
	DefaultMatchesPerSeason = 1500
	DefaultStartYear        = 2021
	DefaultSkillSpread      = 800.0
	DefaultMinCorrelation   = 0.6

	// Hidden strengths are centred on the usual starting rating.
	skillCentre = 1300.0
	// Per-surface shift applied on top of the base skill.
	surfaceShift = 120.0
)

// File permission constants.
const (
	filePermission      = 0o600
	directoryPermission = 0o750
)

var (
	surfaceMix = []string{"Hard", "Hard", "Hard", "Hard", "Hard", "Clay", "Clay", "Clay", "Grass", "Carpet"}
	levelMix   = []string{"A", "A", "A", "A", "A", "A", "M", "M", "G", "D"}
)
