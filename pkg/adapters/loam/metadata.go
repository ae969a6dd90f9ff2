package loam

// RecordMetadata is the frontmatter of a recipient document.
// Keys match the wire record so the files read like the API payloads.
type RecordMetadata struct {
	ID            string `json:"id" yaml:"id" mapstructure:"id"`
	FirstName     string `json:"first_name" yaml:"first_name" mapstructure:"first_name"`
	MiddleName    string `json:"middle_name,omitempty" yaml:"middle_name,omitempty" mapstructure:"middle_name"`
	LastName      string `json:"last_name" yaml:"last_name" mapstructure:"last_name"`
	AccountNumber string `json:"account_number" yaml:"account_number" mapstructure:"account_number"`
}
