package domain

// PetStage enumerates virtual-pet growth stages.
type PetStage string

const (
	StageEgg      PetStage = "egg"
	StageHatching PetStage = "hatching"
	StageBaby     PetStage = "baby"
	StageJuvenile PetStage = "juvenile"
	StageAdult    PetStage = "adult"
)

// PetState is the persisted virtual-pet state.
type PetState struct {
	Stage           PetStage `json:"stage"`
	AccumulatedTime int64    `json:"accumulatedTime"`
	TotalEggs       int      `json:"totalEggs"`
	CurrentEggs     int      `json:"currentEggs"`
}
