package signal

import "sync"

// 画面側のバッジ類が購読する通知名
const (
	CartChanged     = "cart-changed"
	WishlistChanged = "wishlist-changed"
)

// 状態遷移が確定した後にだけ発火する通知バス。
// ペイロードは名前だけで、結果も返さない（fire-and-forget）。
type Bus interface {
	Publish(name string)
}

type Hub struct {
	mu   sync.RWMutex
	subs map[string][]func()
}

func NewHub() *Hub {
	return &Hub{subs: map[string][]func(){}}
}

func (h *Hub) Subscribe(name string, fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[name] = append(h.subs[name], fn)
}

func (h *Hub) Publish(name string) {
	h.mu.RLock()
	fns := h.subs[name]
	h.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}
