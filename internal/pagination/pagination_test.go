package pagination

import "testing"

func TestDefaultsAndOffset(t *testing.T) {
	tests := []struct {
		name       string
		req        PageRequest
		wantPage   int
		wantSize   int
		wantOffset int
	}{
		{"empty", PageRequest{}, 1, 20, 0},
		{"third page", PageRequest{Page: 3, PageSize: 10}, 3, 10, 20},
		{"size only", PageRequest{PageSize: 5}, 1, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.Defaults()
			if req.Page != tt.wantPage || req.PageSize != tt.wantSize {
				t.Errorf("Defaults() = %d/%d, want %d/%d", req.Page, req.PageSize, tt.wantPage, tt.wantSize)
			}
			if got := req.Offset(); got != tt.wantOffset {
				t.Errorf("Offset() = %d, want %d", got, tt.wantOffset)
			}
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[int](nil, 1, 20, 41)
	if resp.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", resp.TotalPages)
	}
	if resp.Data == nil {
		t.Error("Data should be an empty slice, not nil")
	}
}

func TestMapPage(t *testing.T) {
	in := NewPageResponse([]int{1, 2, 3}, 2, 3, 9)
	out := MapPage(in, func(i int) string { return string(rune('a' + i - 1)) })

	if len(out.Data) != 3 || out.Data[2] != "c" {
		t.Errorf("Data = %v", out.Data)
	}
	if out.Page != 2 || out.PageSize != 3 || out.TotalItems != 9 || out.TotalPages != 3 {
		t.Errorf("metadata not preserved: %+v", out)
	}
}
