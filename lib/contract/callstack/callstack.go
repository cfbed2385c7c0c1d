package callstack

import (
	"fmt"

	"boscoin.io/sctester/lib/common"
)

// CallItem is one frame: the address running in it and the coins made
// available to it.
type CallItem struct {
	Address string        `json:"address"`
	Coins   common.Amount `json:"coins"`
}

func (c CallItem) String() string {
	return fmt.Sprintf("%s(%s)", c.Address, c.Coins)
}

// CallStack is LIFO; the last pushed item is the innermost active frame.
// It is not safe for concurrent use.
type CallStack struct {
	items []CallItem
}

func New() *CallStack {
	return &CallStack{}
}

func (c *CallStack) Reset() {
	c.items = nil
}

func (c *CallStack) Push(item CallItem) {
	c.items = append(c.items, item)
}

// Pop returns false when the stack is empty.
func (c *CallStack) Pop() (CallItem, bool) {
	if len(c.items) < 1 {
		return CallItem{}, false
	}

	item := c.items[len(c.items)-1]
	c.items[len(c.items)-1] = CallItem{}
	c.items = c.items[:len(c.items)-1]

	return item, true
}

func (c *CallStack) Current() (CallItem, bool) {
	if len(c.items) < 1 {
		return CallItem{}, false
	}

	return c.items[len(c.items)-1], true
}

// Caller is the frame below the current one.
func (c *CallStack) Caller() (CallItem, bool) {
	if len(c.items) < 2 {
		return CallItem{}, false
	}

	return c.items[len(c.items)-2], true
}

func (c *CallStack) Depth() int {
	return len(c.items)
}

// Items returns a copy, bottom first.
func (c *CallStack) Items() []CallItem {
	items := make([]CallItem, len(c.items))
	copy(items, c.items)

	return items
}
