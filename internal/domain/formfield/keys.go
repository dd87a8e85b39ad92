package formfield

// ClientKeys - списки ключей-кандидатов для одного клиента, в порядке приоритета.
// Форма несколько раз меняла имена полей, поэтому каждая цепочка перечисляет все
// встречавшиеся варианты: сначала актуальные, затем старые.
type ClientKeys struct {
	FirstName         []string
	CurrentCoverage   []string
	QuotingCoverage   []string
	MASelectionMethod []string
	CurrentMAPlan     []string
	// MAPlanCodes - до трёх слотов кодов MA, у каждого слота своя цепочка.
	MAPlanCodes       [][]string
	MSSelectionMethod []string
	MSCode            []string
	MSPremium         []string
	PDPCode           []string
}

// MetaKeys - ключи метаданных отправки.
type MetaKeys struct {
	SubmissionID []string
	FormID       []string
	IP           []string
}

// HowManyKeys - признак "Single"/"Joint".
var HowManyKeys = []string{"howmany", "HowMany", "q2_howmany"}

// Client1Keys - поля первого клиента.
var Client1Keys = ClientKeys{
	FirstName:         []string{"firstname", "firstName", "first_name", "q3_firstNameClient1", "firstNameClient1"},
	CurrentCoverage:   []string{"typea12[0]", "typea12", "currentCoverageC1", "q4_currentCoverageTypeClient1"},
	QuotingCoverage:   []string{"whatare[0]", "whatare", "whatAreWeQuotingC1"},
	MASelectionMethod: []string{"maplan33", "maPlanSelectionMethodClient1"},
	CurrentMAPlan:     []string{"currentma43", "currentMa43", "currentMAPlanClient1"},
	MAPlanCodes: [][]string{
		{"maPlan", "maPlan1", "maPlanCode1C1"},
		{"maPlan2", "maPlanCode2C1"},
		{"maPlan3", "maPlanCode3C1"},
	},
	MSSelectionMethod: []string{"msplan", "msPlanSelectionMethodClient1"},
	MSCode:            []string{"currentMs", "currentMSCodeClient1"},
	MSPremium:         []string{"premiumclient", "premiumClient1"},
	PDPCode:           []string{"currentPdp", "currentPDPCodeClient1"},
}

// Client2Keys - поля второго клиента (совместная заявка).
var Client2Keys = ClientKeys{
	FirstName:         []string{"firstname2", "firstName2", "first_name2", "q3_firstNameClient2", "firstNameClient2"},
	CurrentCoverage:   []string{"typea12[1]", "typea12_2", "currentCoverageC2", "q4_currentCoverageTypeClient2"},
	QuotingCoverage:   []string{"whatare[1]", "whatAreWeQuotingC2"},
	MASelectionMethod: []string{"maplan33_2", "maPlanSelectionMethodClient2"},
	CurrentMAPlan:     []string{"currentma43_2", "currentMAPlanClient2"},
	MAPlanCodes: [][]string{
		{"maPlan_2", "maPlan1C2", "maPlanCode1C2"},
		{"maPlan2_2", "maPlanCode2C2"},
		{"maPlan3_2", "maPlanCode3C2"},
	},
	MSSelectionMethod: []string{"msplan_2", "msPlanSelectionMethodClient2"},
	MSCode:            []string{"currentMs_2", "currentMSCodeClient2"},
	MSPremium:         []string{"premiumclient_2", "premiumClient2"},
	PDPCode:           []string{"currentPdp_2", "currentPDPCodeClient2"},
}

// Meta - ключи метаданных.
var Meta = MetaKeys{
	SubmissionID: []string{"id", "submissionID", "submission_id"},
	FormID:       []string{"formID", "formId", "form_id"},
	IP:           []string{"ip", "IP", "client_ip"},
}
