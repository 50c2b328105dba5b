package cart

// State is the full cart state. Items keep insertion order. Loaded is false
// only before the one-time hydration from storage has completed.
type State struct {
	Items  []LineItem
	Loaded bool
}

// action is a tagged variant dispatched through reduce. Mutating methods on
// Store build the action, reduce applies it; reduce itself never touches
// storage or any other side effect.
type action interface {
	isAction()
}

type setItems struct{ items []LineItem }

type addItem struct{ item LineItem }

type removeItem struct{ id string }

type clearCart struct{}

func (setItems) isAction()   {}
func (addItem) isAction()    {}
func (removeItem) isAction() {}
func (clearCart) isAction()  {}

func reduce(state State, a action) State {
	switch a := a.(type) {
	case setItems:
		state.Items = a.items
		state.Loaded = true
	case addItem:
		items := make([]LineItem, 0, len(state.Items)+1)
		items = append(items, state.Items...)
		state.Items = append(items, a.item)
	case removeItem:
		items := make([]LineItem, 0, len(state.Items))
		for _, it := range state.Items {
			if it.ID != a.id {
				items = append(items, it)
			}
		}
		state.Items = items
	case clearCart:
		state.Items = []LineItem{}
	}
	return state
}
