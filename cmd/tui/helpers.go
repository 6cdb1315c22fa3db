package tui

import "github.com/casos-paranormales/casos-cli/lib/wizard"

// contextualHint 底部按键提示
func (m *mainModel) contextualHint() string {
	switch m.step {
	case mainStepLogin:
		return "Tab: cambiar campo · Enter: continuar · Esc: salir"
	case mainStepMenu:
		return "↑↓: navegar · Enter: elegir · q: salir"
	case mainStepOutput:
		return "Enter: volver al menú"
	}
	if m.currentAction == actionUpload {
		if m.wiz == nil || m.running {
			return "Ctrl+C: cancelar"
		}
		switch m.wiz.Step() {
		case wizard.StepBasics:
			return "↑↓: tipo · Tab: cambiar campo · Enter/Ctrl+N: siguiente · Esc: cancelar"
		case wizard.StepLocation:
			if m.fieldFocus == 0 {
				return "Tab: completar país · Ctrl+P: otra sugerencia · Enter/Ctrl+N: siguiente · Esc: anterior"
			}
		case wizard.StepDescription:
			return "Ctrl+N: siguiente · Esc: anterior"
		case wizard.StepFiles:
			return "Tab: ruta/explorador · Enter: adjuntar · Ctrl+X: quitar último · Ctrl+S: enviar · Esc: anterior"
		}
		return "Tab: cambiar campo · Enter/Ctrl+N: siguiente · Esc: anterior"
	}
	if m.fview == feedViewDetail {
		switch {
		case m.composing:
			return "Enter: publicar · Esc: cancelar"
		case m.confirmDeleteId != 0:
			return "s: eliminar · n: cancelar"
		}
		return "Tab: archivos/comentarios · ↑↓: mover · o: abrir · l/d: me gusta/no me gusta · c: comentar · x: eliminar · Esc: volver"
	}
	if m.searching {
		return "Enter: buscar · Esc: cancelar"
	}
	if m.currentAction == actionFeatured {
		return "↑↓: navegar · Enter: ver detalle · r: recargar · Esc: menú"
	}
	return "↑↓: navegar · Enter: detalle · /: buscar · t: tipo · ←→: página · r: recargar · Esc: menú"
}
