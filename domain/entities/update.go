package entities

import "time"

// UpdateAction selects which updater entry point handles a request.
type UpdateAction string

const (
	// ActionApplyOTAUpdate installs an operating system image.
	ActionApplyOTAUpdate UpdateAction = "APPLY_OTA_UPDATE"
	// ActionUpdateApp installs an application package.
	ActionUpdateApp UpdateAction = "UPDATE_APP"
)

func (a UpdateAction) String() string {
	return string(a)
}

// UpdateRequest asks the updater to install one piece of software.
type UpdateRequest struct {
	// ID correlates results and outcomes with the request.
	// It is assigned on submission when left empty.
	ID string `json:"id" yaml:"id"`

	PackageName string       `json:"package_name" yaml:"package_name"`
	VersionName string       `json:"version_name" yaml:"version_name"`
	FilePath    string       `json:"file_path" yaml:"file_path"`
	Action      UpdateAction `json:"action" yaml:"action"`
}

// UpdateState is the last status reported for the request in flight.
type UpdateState struct {
	Request   UpdateRequest
	Status    Result
	UpdatedAt time.Time
}

// UpdateOutcome is the end of an update request: either the terminal result
// reported by the updater or the error that stopped the request.
type UpdateOutcome struct {
	Request  UpdateRequest
	Result   *Result
	Err      error
	Attempts int
}

// Succeeded reports whether the updater finished with a success result.
func (o UpdateOutcome) Succeeded() bool {
	return o.Err == nil && o.Result != nil && o.Result.PresentationType() == PresentationSuccess
}
