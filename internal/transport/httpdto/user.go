package httpdto

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required,max=64"`
	AvatarURL   string `json:"avatar_url"`
}
