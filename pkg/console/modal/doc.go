// Package modal builds the console's dialog boxes from declarative sections
// and keeps their mouse hit regions in step with what was drawn.
//
// Regions are measured from the rendered output (render, then measure), so a
// button's clickable area is always the area it occupies on screen.
//
//	m := modal.New("Delete", modal.WithVariant(modal.VariantDanger)).
//	    AddSection(modal.Text(`Delete "Northwind"? This cannot be undone.`)).
//	    AddSection(modal.Spacer()).
//	    AddSection(modal.Buttons(
//	        modal.Btn(" Delete ", "confirm", modal.BtnDanger()),
//	        modal.Btn(" Cancel ", "cancel"),
//	    ))
//
//	// View:
//	box := m.Render(width, height, mouseHandler)
//	x, y := m.Origin()
//	screen = modal.Overlay(screen, box, x, y)
//
//	// Update:
//	if action, cmd := m.HandleKey(keyMsg); action != "" { ... }
//
// Sections: Text, StyledText, Spacer, Buttons, List, Custom and When.
package modal
