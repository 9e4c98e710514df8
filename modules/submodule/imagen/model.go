package imagen

// Vertex AI Imagen REST 요청/응답 구조

type predictRequest struct {
	Instances  []instance `json:"instances"`
	Parameters parameters `json:"parameters"`
}

type instance struct {
	Prompt string       `json:"prompt"`
	Image  *inlineImage `json:"image,omitempty"`
}

type inlineImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
}

type parameters struct {
	SampleCount       int           `json:"sampleCount"`
	AspectRatio       string        `json:"aspectRatio"`
	SafetyFilterLevel string        `json:"safetyFilterLevel"`
	PersonGeneration  string        `json:"personGeneration"`
	OutputOptions     outputOptions `json:"outputOptions"`
	EditConfig        *editConfig   `json:"editConfig,omitempty"`
	StylizationLevel  int           `json:"stylizationLevel,omitempty"`
}

type outputOptions struct {
	MimeType           string `json:"mimeType"`
	CompressionQuality string `json:"compressionQuality"`
}

type editConfig struct {
	EditMode        string `json:"editMode"`
	GuidanceScale   int    `json:"guidanceScale"`
	OutputImageType string `json:"outputImageType"`
}

type fetchOperationRequest struct {
	OperationName string `json:"operationName"`
}

type operationResponse struct {
	Name     string           `json:"name"`
	Done     bool             `json:"done"`
	Response *operationResult `json:"response,omitempty"`
	Error    *operationError  `json:"error,omitempty"`
}

type operationResult struct {
	Predictions []prediction `json:"predictions"`
}

type prediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type operationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
