package models

// ReceiptRecord represents the structured fields extracted from the OCR text
// of a receipt or invoice. Every field except RawText is optional: a nil
// pointer (or empty string) means the field could not be extracted. The
// record is fully populated by the parser before it is returned and is never
// mutated afterwards.
type ReceiptRecord struct {
	RawText string `json:"rawText"`

	Amount         *float64 `json:"amount,omitempty"`         // grand total
	SubtotalAmount *float64 `json:"subtotalAmount,omitempty"` // pre-tax amount
	TaxAmount      *float64 `json:"taxAmount,omitempty"`      // tax in currency units
	TaxPercentage  *float64 `json:"taxPercentage,omitempty"`  // tax rate, 0-100

	InvoiceNumber string `json:"invoiceNumber,omitempty"`
	Date          string `json:"date,omitempty"` // matched substring, not parsed
	VendorName    string `json:"vendorName,omitempty"`
}

// ProcessResponse represents the output of receipt processing
type ProcessResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	ReceiptID string         `json:"receiptId,omitempty"`
	Record    *ReceiptRecord `json:"record,omitempty"`

	// Processing metadata
	ExtractDuration float64 `json:"extractDuration,omitempty"` // text extraction time in seconds
	TotalDuration   float64 `json:"totalDuration"`             // total processing time
}

// Config represents the service configuration
type Config struct {
	// Server config
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// Text extraction config
	Extraction ExtractionConfig `yaml:"extraction"`

	// Auth config
	Auth AuthConfig `yaml:"auth"`

	// Parser config
	Parser ParserConfig `yaml:"parser"`
}

// ExtractionConfig selects and configures the text-extraction engine
type ExtractionConfig struct {
	// Engine used for image files: "tesseract", "gemini" or "openai".
	// PDFs always go through the embedded text layer first.
	Engine   string `yaml:"engine"`
	Language string `yaml:"language"` // tesseract languages, e.g. "eng+spa"

	Gemini GeminiConfig `yaml:"gemini"`
	OpenAI OpenAIConfig `yaml:"openai"`
}

// GeminiConfig for the Google Gemini vision engine
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-1.5-flash"
}

// OpenAIConfig for OpenAI-compatible vision engines
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"` // For custom endpoints
	Model   string `yaml:"model"`              // Default: "gpt-4o-mini"
}

// AuthConfig holds the login credentials and JWT settings
type AuthConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"` // bcrypt hash
	JWTSecret    string `yaml:"jwt_secret"`
	TokenHours   int    `yaml:"token_hours"` // Default: 24
}

// ParserConfig controls diagnostic behavior of the extraction engine
type ParserConfig struct {
	Trace bool `yaml:"trace"` // step-by-step extraction logging
}
