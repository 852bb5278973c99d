package scrollback

import (
	"errors"
	"fmt"
)

// ErrOutOfRange 表示行号超出 [0, TotalRows())。
var ErrOutOfRange = errors.New("scrollback row out of range")

// Source 是滚动区的两路数据来源，*session.Log 实现了它。
type Source interface {
	Len() int
	Command(i int) (string, bool)
	Response(i int) (string, bool)
}

// RowKind 区分行来自哪条序列。
type RowKind int

const (
	RowResponse RowKind = iota
	RowCommand
)

func (k RowKind) String() string {
	if k == RowCommand {
		return "command"
	}
	return "response"
}

// Row 是一行可渲染内容。
type Row struct {
	Index int
	Kind  RowKind
	Text  string
}

// View 把两条序列映射到单一行号空间：偶数行是响应，奇数行是命令，
// 第 0 行是最早的响应。View 不缓存任何计数，每次调用都以 Source 为准。
type View struct {
	src Source
}

// NewView 创建视图。
func NewView(src Source) *View {
	return &View{src: src}
}

// TotalRows 返回两条序列长度之和。
func (v *View) TotalRows() int {
	return 2 * v.src.Len()
}

// KindOf 返回行号对应的来源。
func KindOf(index int) RowKind {
	if index%2 == 0 {
		return RowResponse
	}
	return RowCommand
}

// RowAt 返回第 index 行；越界返回 ErrOutOfRange，不做截断。
func (v *View) RowAt(index int) (string, error) {
	row, err := v.row(index, v.TotalRows())
	if err != nil {
		return "", err
	}
	return row.Text, nil
}

// VisibleSlice 返回从 first 开始的至多 count 行，只读取这些行本身，
// 代价与 count 成正比而与历史总长无关。first 越界返回 ErrOutOfRange；
// first == TotalRows() 或 count <= 0 返回空切片。
func (v *View) VisibleSlice(first, count int) ([]Row, error) {
	total := v.TotalRows()
	if first < 0 || first > total {
		return nil, fmt.Errorf("first row %d of %d: %w", first, total, ErrOutOfRange)
	}
	if count <= 0 || first == total {
		return []Row{}, nil
	}
	end := first + count
	if end > total {
		end = total
	}
	rows := make([]Row, 0, end-first)
	for i := first; i < end; i++ {
		row, err := v.row(i, total)
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (v *View) row(index, total int) (Row, error) {
	if index < 0 || index >= total {
		return Row{}, fmt.Errorf("row %d of %d: %w", index, total, ErrOutOfRange)
	}
	kind := KindOf(index)
	var (
		text string
		ok   bool
	)
	if kind == RowResponse {
		text, ok = v.src.Response(index / 2)
	} else {
		text, ok = v.src.Command(index / 2)
	}
	if !ok {
		return Row{}, fmt.Errorf("row %d of %d: %w", index, total, ErrOutOfRange)
	}
	return Row{Index: index, Kind: kind, Text: text}, nil
}
