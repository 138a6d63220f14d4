package controllers

// APIResponse 统一API响应结构
type APIResponse struct {
	Status int         `json:"status" example:"200"`
	Msg    string      `json:"msg" example:"校验完成"`
	Data   interface{} `json:"data,omitempty"`
}

// PaginatedResponse 分页响应结构，用于实体列表查询
type PaginatedResponse struct {
	Status int         `json:"status" example:"200"`
	Msg    string      `json:"msg" example:"获取基因列表成功"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total" example:"42"`
	Page   int         `json:"page" example:"1"`
	Size   int         `json:"size" example:"10"`
}
