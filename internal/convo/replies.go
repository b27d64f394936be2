package convo

import (
	"fmt"
	"strings"

	"barber-bot/internal/repo"
)

// Canned replies keyed by chat state. Customer-facing text is Spanish.
const (
	replyNewCustomer = "¡Hola! Bienvenido a la barbería 💈 En un momento uno de nuestros barberos te atenderá."
	replyAwaiting    = "Ya recibimos tu mensaje, un barbero te responderá en breve. ¡Gracias por tu paciencia!"
	replyReWelcome   = "¡Qué gusto saludarte de nuevo! ¿En qué podemos ayudarte hoy?"
	replyFallback    = "¡Hola! Gracias por escribirnos, en breve te atendemos."
)

// ReplyFor selects the canned reply for an inbound message given the
// resulting chat status and whether the chat was just created.
func ReplyFor(status string, isNew bool) string {
	if isNew {
		return replyNewCustomer
	}
	switch status {
	case repo.StatusAwaitingBarber:
		return replyAwaiting
	case repo.StatusAttended:
		return replyReWelcome
	default:
		return replyFallback
	}
}

// FormatServices renders the services catalog as a WhatsApp text list.
func FormatServices(services []repo.Service) string {
	if len(services) == 0 {
		return "📋 No hay servicios disponibles en este momento."
	}

	var b strings.Builder
	b.WriteString("*📋 SERVICIOS DISPONIBLES*\n\n")
	for i, s := range services {
		fmt.Fprintf(&b, "%d. *%s*\n", i+1, s.Name)
		if s.Description != "" {
			fmt.Fprintf(&b, "   %s\n", s.Description)
		}
		fmt.Fprintf(&b, "   💰 Precio: $%.2f\n\n", s.Price)
	}
	return b.String()
}

// FormatBarbers renders the barber roster as a WhatsApp text list.
func FormatBarbers(barbers []repo.Barber) string {
	if len(barbers) == 0 {
		return "👨‍💼 No hay barberos disponibles en este momento."
	}

	var b strings.Builder
	b.WriteString("*👨‍💼 NUESTROS BARBEROS*\n\n")
	for i, barber := range barbers {
		fmt.Fprintf(&b, "%d. *%s*", i+1, barber.Name)
		if barber.Specialty != "" {
			fmt.Fprintf(&b, "\n   %s", barber.Specialty)
		}
		b.WriteString("\n\n")
	}
	return b.String()
}
