package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/zukai/internal/domain"
)

// GestureResult classifies what a click did to the connection-draw gesture.
type GestureResult string

// GestureResult values.
const (
	GestureArmed     GestureResult = "armed"
	GestureConnected GestureResult = "connected"
	GestureCancelled GestureResult = "cancelled"
	GestureRejected  GestureResult = "rejected"
)

// GestureOutcome reports one gesture transition. Err is set for rejections.
type GestureOutcome struct {
	Result         GestureResult
	Source         string
	Target         string
	TargetCategory domain.Category
	Connection     domain.Connection
	Message        string
	Err            error
}

// ConnectGesture is the session-only Idle -> Armed(src) -> Idle machine used to
// draw connections by clicking two cards. It is never persisted.
type ConnectGesture struct {
	source string
}

// Armed returns the armed source id.
func (g *ConnectGesture) Armed() (string, bool) {
	return g.source, g.source != ""
}

// Cancel returns the gesture to Idle and reports whether it was armed.
func (g *ConnectGesture) Cancel() bool {
	armed := g.source != ""
	g.source = ""
	return armed
}

// Click advances the gesture against the current model. A GestureConnected
// outcome carries a validated source/target pair that still needs an id.
func (g *ConnectGesture) Click(m domain.LogicModel, id string) GestureOutcome {
	id = strings.TrimSpace(id)
	if g.source == "" {
		item, ok := m.Item(id)
		if !ok {
			return GestureOutcome{Result: GestureRejected, Source: id, Err: domain.ErrItemNotFound, Message: "項目が見つかりません。"}
		}
		next, ok := item.Category.Next()
		if !ok {
			return GestureOutcome{Result: GestureRejected, Source: id, Err: domain.ErrLastStage, Message: "この項目からは矢印を引けません（最後のステージです）。"}
		}
		g.source = id
		return GestureOutcome{
			Result:         GestureArmed,
			Source:         id,
			TargetCategory: next,
			Message:        fmt.Sprintf("%sの項目をクリックして矢印を作成してください。", next.Label()),
		}
	}

	source := g.source
	g.source = ""
	out := GestureOutcome{Source: source, Target: id}
	if source == id {
		out.Result = GestureCancelled
		out.Err = domain.ErrSelfConnection
		out.Message = "同じカードには矢印を引けません。"
		return out
	}
	err := m.ValidateConnection(source, id)
	if err == nil {
		out.Result = GestureConnected
		out.Message = "矢印を作成しました。"
		return out
	}
	out.Result = GestureRejected
	out.Err = err
	out.Message = gestureRejectionMessage(m, source, id, err)
	return out
}

func gestureRejectionMessage(m domain.LogicModel, source, target string, err error) string {
	switch {
	case errors.Is(err, domain.ErrWrongDirection):
		src, _ := m.Item(source)
		dst, _ := m.Item(target)
		if src.Category == dst.Category {
			return "同じカテゴリ内では矢印を引けません。"
		}
		return "矢印は左から右の方向にのみ引けます。"
	case errors.Is(err, domain.ErrNotAdjacent):
		return "矢印は隣接するカテゴリにのみ引けます。"
	case errors.Is(err, domain.ErrDuplicateConnection):
		return "この矢印は既に存在します。"
	case errors.Is(err, domain.ErrItemNotFound):
		return "項目が見つかりません。"
	default:
		return err.Error()
	}
}
