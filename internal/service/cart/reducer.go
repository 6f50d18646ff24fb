package cart

import "veggi-storefront/internal/domain"

// State is the ordered list of line items, unique by product id.
type State struct {
	Items []domain.CartLineItem `json:"items"`
}

// Action is one of AddItem, UpdateQuantity, RemoveItem or Clear.
type Action interface {
	isAction()
}

type AddItem struct {
	Item     domain.CartLineItem
	Quantity int
}

type UpdateQuantity struct {
	ID       string
	Quantity int
}

type RemoveItem struct {
	ID string
}

type Clear struct{}

func (AddItem) isAction()        {}
func (UpdateQuantity) isAction() {}
func (RemoveItem) isAction()     {}
func (Clear) isAction()          {}

// Reduce returns the state that results from applying action to state.
// It never mutates the input slice.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case AddItem:
		for i, item := range state.Items {
			if item.ID == a.Item.ID {
				items := cloneItems(state.Items)
				items[i].Quantity = item.Quantity + a.Quantity
				return State{Items: items}
			}
		}
		added := a.Item
		added.Quantity = a.Quantity
		items := make([]domain.CartLineItem, 0, len(state.Items)+1)
		items = append(items, state.Items...)
		return State{Items: append(items, added)}

	case UpdateQuantity:
		items := make([]domain.CartLineItem, 0, len(state.Items))
		for _, item := range state.Items {
			if item.ID == a.ID {
				item.Quantity = a.Quantity
			}
			if item.Quantity > 0 {
				items = append(items, item)
			}
		}
		return State{Items: items}

	case RemoveItem:
		items := make([]domain.CartLineItem, 0, len(state.Items))
		for _, item := range state.Items {
			if item.ID != a.ID {
				items = append(items, item)
			}
		}
		return State{Items: items}

	case Clear:
		return State{Items: []domain.CartLineItem{}}
	}
	return state
}

func cloneItems(items []domain.CartLineItem) []domain.CartLineItem {
	out := make([]domain.CartLineItem, len(items))
	copy(out, items)
	return out
}
