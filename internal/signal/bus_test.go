package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_PublishReachesSubscribers(t *testing.T) {
	h := NewHub()

	var cart, wishlist int
	h.Subscribe(CartChanged, func() { cart++ })
	h.Subscribe(CartChanged, func() { cart++ })
	h.Subscribe(WishlistChanged, func() { wishlist++ })

	h.Publish(CartChanged)

	assert.Equal(t, 2, cart)
	assert.Equal(t, 0, wishlist)
}

func TestHub_PublishWithoutSubscribersIsNoop(t *testing.T) {
	h := NewHub()
	assert.NotPanics(t, func() { h.Publish(CartChanged) })
}
