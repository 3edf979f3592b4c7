package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit        key.Binding
	toggleHelp  key.Binding
	switchTab   key.Binding
	moveLeft    key.Binding
	moveRight   key.Binding
	moveUp      key.Binding
	moveDown    key.Binding
	connect     key.Binding
	addItem     key.Binding
	editItem    key.Binding
	deleteItem  key.Binding
	disconnect  key.Binding
	cycleMode   key.Binding
	prevSlot    key.Binding
	nextSlot    key.Binding
	addCompare  key.Binding
	dropCompare key.Binding
	editPurpose key.Binding
	newModel    key.Binding
	saveImage   key.Binding
	writeJSON   key.Binding
	yankJSON    key.Binding
	summary     key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		switchTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "logic/purpose")),
		moveLeft:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		moveDown:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		connect:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "draw arrow")),
		addItem:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "add")),
		editItem:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		deleteItem:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		disconnect:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete arrow")),
		cycleMode:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "cycle mode")),
		prevSlot:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous slot")),
		nextSlot:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next slot")),
		addCompare:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "add comparison")),
		dropCompare: key.NewBinding(key.WithKeys("C", "shift+c"), key.WithHelp("C", "remove comparison")),
		editPurpose: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "edit purpose")),
		newModel:    key.NewBinding(key.WithKeys("N", "shift+n"), key.WithHelp("N", "new model")),
		saveImage:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save image")),
		writeJSON:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "write json")),
		yankJSON:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy json")),
		summary:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "summary")),
	}
}

// logicKeyMap shows the bindings active on the logic board.
type logicKeyMap struct{ keyMap }

// purposeKeyMap shows the bindings active on the purpose view.
type purposeKeyMap struct{ keyMap }

// ShortHelp handles short help.
func (k logicKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.addItem, k.connect, k.editItem, k.deleteItem, k.disconnect, k.switchTab, k.toggleHelp, k.quit}
}

// FullHelp handles full help.
func (k logicKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.switchTab},
		{k.addItem, k.editItem, k.deleteItem, k.connect, k.disconnect},
		{k.newModel, k.saveImage, k.writeJSON, k.yankJSON, k.summary, k.toggleHelp, k.quit},
	}
}

// ShortHelp handles short help.
func (k purposeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.cycleMode, k.prevSlot, k.nextSlot, k.addItem, k.editPurpose, k.switchTab, k.toggleHelp, k.quit}
}

// FullHelp handles full help.
func (k purposeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveUp, k.moveDown, k.cycleMode, k.prevSlot, k.nextSlot, k.switchTab},
		{k.addItem, k.editItem, k.deleteItem, k.editPurpose, k.addCompare, k.dropCompare},
		{k.newModel, k.saveImage, k.writeJSON, k.yankJSON, k.summary, k.toggleHelp, k.quit},
	}
}
