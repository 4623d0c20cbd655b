package models

const (
	DefaultModelID        = "prebuilt-layout"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// ErrorResponse is the failure envelope of every proxy endpoint
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SolutionResult is the solution lookup envelope. Fields the backend adds
// beyond solution and error are kept in Extra.
type SolutionResult struct {
	Solution string         `json:"solution"`
	Error    string         `json:"error,omitempty"`
	Extra    map[string]any `json:"-"`
}

// UploadResult represents a successful upload to blob storage
type UploadResult struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	BlobName string `json:"blob_name"`
}

// EmbeddingProcessRequest asks the backend to embed a single stored blob
type EmbeddingProcessRequest struct {
	BlobName       string `json:"blob_name" validate:"required"`
	ModelID        string `json:"model_id"`
	EmbeddingModel string `json:"embedding_model"`
}

// SetDefaults fills the analysis and embedding models when omitted
func (r *EmbeddingProcessRequest) SetDefaults() {
	r.ModelID, r.EmbeddingModel = withModelDefaults(r.ModelID, r.EmbeddingModel)
}

// EmbeddingBatchRequest asks the backend to embed several blobs in one call
type EmbeddingBatchRequest struct {
	BlobNames      []string `json:"blob_names" validate:"required,min=1,dive,required"`
	ModelID        string   `json:"model_id"`
	EmbeddingModel string   `json:"embedding_model"`
}

// SetDefaults fills the analysis and embedding models when omitted
func (r *EmbeddingBatchRequest) SetDefaults() {
	r.ModelID, r.EmbeddingModel = withModelDefaults(r.ModelID, r.EmbeddingModel)
}

func withModelDefaults(modelID, embeddingModel string) (string, string) {
	if modelID == "" {
		modelID = DefaultModelID
	}
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	return modelID, embeddingModel
}

// DocumentResult is the per-blob outcome of an embedding run
type DocumentResult struct {
	BlobName         string         `json:"blob_name"`
	StoredEmbeddings int            `json:"stored_embeddings"`
	Extra            map[string]any `json:"-"`
}

type EmbeddingProcessResult struct {
	Status string         `json:"status"`
	Result DocumentResult `json:"result"`
}

type EmbeddingBatchResult struct {
	Status                string           `json:"status"`
	TotalDocuments        int              `json:"total_documents"`
	TotalEmbeddingsStored int              `json:"total_embeddings_stored"`
	Results               []DocumentResult `json:"results"`
}

type BlobListResult struct {
	Status string   `json:"status"`
	Count  int      `json:"count"`
	Blobs  []string `json:"blobs"`
}
