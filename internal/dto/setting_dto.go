package dto

type SettingDTO struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt int64  `json:"updatedAt"`
}

type SettingSetRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}
