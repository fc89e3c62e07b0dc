package dto

type ExtractMetadataRequest struct {
	Url string `json:"url" validate:"required,max=2048"`
}
