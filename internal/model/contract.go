package model

type ContractStatus string

const (
	ContractStatusNew        ContractStatus = "new"
	ContractStatusInProgress ContractStatus = "in_progress"
	ContractStatusTerminated ContractStatus = "terminated"
)

// Contract is an engagement between one client and one contractor. Status
// transitions happen elsewhere; this service only reads them.
type Contract struct {
	ID           int64          `json:"id"`
	Terms        string         `json:"terms"`
	Status       ContractStatus `json:"status"`
	ClientID     int64          `json:"clientId"`
	ContractorID int64          `json:"contractorId"`
}

// OwnedBy reports whether the given profile is a party to the contract.
func (c Contract) OwnedBy(profileID int64) bool {
	return c.ClientID == profileID || c.ContractorID == profileID
}
