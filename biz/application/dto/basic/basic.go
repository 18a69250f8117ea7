package basic

// Response 通用响应头
type Response struct {
	Code int32  `json:"code"`
	Msg  string `json:"msg"`
}

// Page 分页参数, 页码从1开始
type Page struct {
	Page *int64 `json:"page,omitempty"`
	Size *int64 `json:"size,omitempty"`
}

func (p *Page) GetPage() int64 {
	if p == nil || p.Page == nil || *p.Page < 1 {
		return 1
	}
	return *p.Page
}

func (p *Page) GetSize() int64 {
	if p == nil || p.Size == nil || *p.Size < 1 {
		return 10
	}
	return *p.Size
}
