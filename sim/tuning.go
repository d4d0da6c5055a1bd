package sim

// Default tuning values. The Tuning struct below carries the live values so a
// deployment can override individual numbers from a YAML file without a rebuild.
const (
	DefaultSmoothingRate = 6.0 // per-second low-pass rate shared by all scores

	DefaultMaxDeviationDeg = 60.0 // controller tilt that zeroes the orientation score
	DefaultMinSeparation   = 0.4  // meters; full distance score at or above this

	DefaultOffsetSensitivity = 2.0 // height diff (m) -> offset units
	DefaultScoreFalloff      = 1.5 // height diff (m) -> balance score loss
	DefaultSymmetryFalloff   = 1.0 // planar asymmetry (m) -> balance score loss

	DefaultBalancedThreshold = 0.6  // final score at or above this counts as balanced
	DefaultMaxBalancedOffset = 0.35 // |offset| above this counts as unbalanced

	DefaultGraceWindow = 3.0 // seconds of disruption immunity after regaining balance

	DefaultDisruptionChance = 0.65
	DefaultMinGap           = 4.0 // seconds between disruption attempts
	DefaultMaxGap           = 9.0
	DefaultWarningDelay     = 0.75
	DefaultWarningHaptic    = 0.4

	DefaultGustMin       = 0.8
	DefaultGustMax       = 1.6
	DefaultGustDuration  = 1.2
	DefaultDriftMin      = 0.3
	DefaultDriftMax      = 0.7
	DefaultDriftDuration = 3.5
	DefaultOscAmplitude  = 0.5
	DefaultOscFrequency  = 1.2 // Hz
	DefaultOscDuration   = 2.5

	DefaultDifficultyInterval = 15.0 // seconds between ramp increases
	DefaultDifficultyRate     = 0.25 // multiplier added per increase
	DefaultDifficultyMax      = 3.0
	DefaultChanceMultiplier   = 0.5

	DefaultSpeedMax     = 1.5  // m/s at a perfect score
	DefaultSpeedFloor   = 0.15 // m/s; the plank never fully stops
	DefaultResponseExp  = 2.0  // speed curve exponent
	DefaultSagMagnitude = 0.6  // meters of rope droop at mid-path
)

// Tuning holds every knob of the ride simulation. Zero values are not
// meaningful; start from DefaultTuning and override fields as needed.
type Tuning struct {
	SmoothingRate float64 `yaml:"smoothing_rate"`

	// Orientation score.
	MaxDeviationDeg  float64 `yaml:"max_deviation_deg"`
	RequireBothHands bool    `yaml:"require_both_hands"` // combine per-hand scores via min instead of max

	// Distance score.
	MinSeparation float64 `yaml:"min_separation"`

	// Balance score and offset.
	OffsetSensitivity float64 `yaml:"offset_sensitivity"`
	ScoreFalloff      float64 `yaml:"score_falloff"`
	SymmetryPenalty   bool    `yaml:"symmetry_penalty"`
	SymmetryFalloff   float64 `yaml:"symmetry_falloff"`

	BalancedThreshold float64 `yaml:"balanced_threshold"`
	MaxBalancedOffset float64 `yaml:"max_balanced_offset"`
	GraceWindow       float64 `yaml:"grace_window"` // seconds

	// Disruption scheduling. Gaps and durations are seconds.
	DisruptionChance float64          `yaml:"disruption_chance"`
	MinGap           float64          `yaml:"min_gap"`
	MaxGap           float64          `yaml:"max_gap"`
	WarningDelay     float64          `yaml:"warning_delay"`
	WarningHaptic    float64          `yaml:"warning_haptic"`
	Disruptions      []DisruptionType `yaml:"disruptions"` // enabled waveforms

	GustMin       float64 `yaml:"gust_min"`
	GustMax       float64 `yaml:"gust_max"`
	GustDuration  float64 `yaml:"gust_duration"`
	DriftMin      float64 `yaml:"drift_min"`
	DriftMax      float64 `yaml:"drift_max"`
	DriftDuration float64 `yaml:"drift_duration"`
	OscAmplitude  float64 `yaml:"osc_amplitude"`
	OscFrequency  float64 `yaml:"osc_frequency"`
	OscDuration   float64 `yaml:"osc_duration"`

	// Difficulty ramp.
	DifficultyEnabled  bool    `yaml:"difficulty_enabled"`
	DifficultyInterval float64 `yaml:"difficulty_interval"`
	DifficultyRate     float64 `yaml:"difficulty_rate"`
	DifficultyMax      float64 `yaml:"difficulty_max"`
	ChanceMultiplier   float64 `yaml:"chance_multiplier"`

	// Movement.
	SpeedMax     float64    `yaml:"speed_max"`
	SpeedFloor   float64    `yaml:"speed_floor"`
	ResponseExp  float64    `yaml:"response_exp"`
	PathStart    [3]float64 `yaml:"path_start"`
	PathEnd      [3]float64 `yaml:"path_end"`
	SagMagnitude float64    `yaml:"sag_magnitude"`
}

func DefaultTuning() Tuning {
	return Tuning{
		SmoothingRate: DefaultSmoothingRate,

		MaxDeviationDeg:  DefaultMaxDeviationDeg,
		RequireBothHands: true,

		MinSeparation: DefaultMinSeparation,

		OffsetSensitivity: DefaultOffsetSensitivity,
		ScoreFalloff:      DefaultScoreFalloff,
		SymmetryPenalty:   false,
		SymmetryFalloff:   DefaultSymmetryFalloff,

		BalancedThreshold: DefaultBalancedThreshold,
		MaxBalancedOffset: DefaultMaxBalancedOffset,
		GraceWindow:       DefaultGraceWindow,

		DisruptionChance: DefaultDisruptionChance,
		MinGap:           DefaultMinGap,
		MaxGap:           DefaultMaxGap,
		WarningDelay:     DefaultWarningDelay,
		WarningHaptic:    DefaultWarningHaptic,
		Disruptions:      []DisruptionType{Gust, Drift, Oscillation},

		GustMin:       DefaultGustMin,
		GustMax:       DefaultGustMax,
		GustDuration:  DefaultGustDuration,
		DriftMin:      DefaultDriftMin,
		DriftMax:      DefaultDriftMax,
		DriftDuration: DefaultDriftDuration,
		OscAmplitude:  DefaultOscAmplitude,
		OscFrequency:  DefaultOscFrequency,
		OscDuration:   DefaultOscDuration,

		DifficultyEnabled:  true,
		DifficultyInterval: DefaultDifficultyInterval,
		DifficultyRate:     DefaultDifficultyRate,
		DifficultyMax:      DefaultDifficultyMax,
		ChanceMultiplier:   DefaultChanceMultiplier,

		SpeedMax:     DefaultSpeedMax,
		SpeedFloor:   DefaultSpeedFloor,
		ResponseExp:  DefaultResponseExp,
		PathStart:    [3]float64{0, 4, 0},
		PathEnd:      [3]float64{0, 4, 12},
		SagMagnitude: DefaultSagMagnitude,
	}
}
