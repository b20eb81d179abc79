package runtime

// inferenceRequest is the body of POST /v2/models/{name}/infer.
type inferenceRequest struct {
	ID     string        `json:"id,omitempty"`
	Inputs []requestData `json:"inputs"`
}

type requestData struct {
	Name     string    `json:"name"`
	Shape    []int     `json:"shape"`
	Datatype string    `json:"datatype"`
	Data     []float64 `json:"data"`
}

type inferenceResponse struct {
	ModelName    string         `json:"model_name"`
	ModelVersion string         `json:"model_version,omitempty"`
	ID           string         `json:"id,omitempty"`
	Outputs      []responseData `json:"outputs"`
}

type responseData struct {
	Name     string    `json:"name"`
	Shape    []int     `json:"shape"`
	Datatype string    `json:"datatype"`
	Data     []float64 `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

const (
	inputName     = "predict"
	inputDatatype = "FP64"
)
