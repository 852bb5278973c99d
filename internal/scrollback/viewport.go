package scrollback

// Viewport 保存滚动位置。AutoScroll 开启时视口贴底：窗口末行是 TotalRows()-1，
// 与之前的 Offset 无关。用户向上滚动会暂时脱离底部，直到下一次追加或滚回底部。
type Viewport struct {
	Offset     int
	Height     int
	AutoScroll bool

	detached bool
}

// Window 返回本帧应绘制的首行，并把 Offset 校正到合法范围。
func (vp *Viewport) Window(total int) int {
	last := vp.lastFirst(total)
	if vp.AutoScroll && !vp.detached {
		vp.Offset = last
		return vp.Offset
	}
	if vp.Offset > last {
		vp.Offset = last
	}
	if vp.Offset < 0 {
		vp.Offset = 0
	}
	return vp.Offset
}

// Appended 在每次追加后调用，AutoScroll 开启时重新贴底。
func (vp *Viewport) Appended() {
	vp.detached = false
}

// ScrollUp 上滚 n 行。
func (vp *Viewport) ScrollUp(n, total int) {
	first := vp.Window(total)
	vp.Offset = max(0, first-n)
	if vp.Offset < vp.lastFirst(total) {
		vp.detached = true
	}
}

// ScrollDown 下滚 n 行，到达底部时恢复贴底。
func (vp *Viewport) ScrollDown(n, total int) {
	first := vp.Window(total)
	last := vp.lastFirst(total)
	vp.Offset = min(last, first+n)
	if vp.Offset >= last {
		vp.detached = false
	}
}

// GotoTop 跳到第一行。
func (vp *Viewport) GotoTop(total int) {
	vp.Offset = 0
	if vp.lastFirst(total) > 0 {
		vp.detached = true
	}
}

// GotoBottom 跳到底部并恢复贴底。
func (vp *Viewport) GotoBottom(total int) {
	vp.Offset = vp.lastFirst(total)
	vp.detached = false
}

// AtBottom 报告窗口是否包含最后一行。
func (vp *Viewport) AtBottom(total int) bool {
	return vp.Window(total) >= vp.lastFirst(total)
}

func (vp *Viewport) lastFirst(total int) int {
	height := vp.Height
	if height < 0 {
		height = 0
	}
	return max(0, total-height)
}

// Visible 按视口返回当前可见行及首行号。
func (v *View) Visible(vp *Viewport) ([]Row, int, error) {
	total := v.TotalRows()
	first := vp.Window(total)
	rows, err := v.VisibleSlice(first, vp.Height)
	return rows, first, err
}
