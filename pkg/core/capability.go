package core

// Capability names a single processing unit function. It is the routing key
// used for registration and lookup.
type Capability string

// Well-known capabilities. Units registered under other names work the same
// way; these are the ones the assistant facade exposes directly.
const (
	CapabilityAnalysis     Capability = "analysis"
	CapabilityDebug        Capability = "debug"
	CapabilityGeneration   Capability = "generation"
	CapabilityOptimization Capability = "optimization"
	CapabilityExplanation  Capability = "explanation"
	CapabilityDSA          Capability = "dsa"
)

func (c Capability) String() string {
	return string(c)
}

// Language tags the programming language of a request payload.
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJava       Language = "java"
	LanguageJavaScript Language = "javascript"
	LanguageCPP        Language = "cpp"
	LanguageGo         Language = "go"
)

// DefaultLanguage is assumed when a caller does not specify one.
const DefaultLanguage = LanguagePython

func (l Language) String() string {
	return string(l)
}

// DetailLevel controls how much an explanation unit elaborates.
type DetailLevel string

const (
	DetailLow    DetailLevel = "low"
	DetailMedium DetailLevel = "medium"
	DetailHigh   DetailLevel = "high"
)
