package conversation

import (
	"fmt"
	"strings"
)

// fallbackVariants returns three deterministic replies for intent. They are used when
// the model's variants are unusable and to top up after deduplication.
func fallbackVariants(intent Intent, slots Slots, studio Studio) []string {
	switch intent {
	case IntentBookAppointment:
		if slots.Complete() {
			return []string{
				fmt.Sprintf("¡Perfecto! Tu cita para %s está confirmada para el %s a las %s. 💅", slots.Servicio, slots.Fecha, slots.Hora),
				fmt.Sprintf("Excelente elección. Te esperamos el %s a las %s para tu %s. ✨", slots.Fecha, slots.Hora, slots.Servicio),
				fmt.Sprintf("¡Listo! Tu cita de %s queda agendada para el %s a las %s. 💖", slots.Servicio, slots.Fecha, slots.Hora),
			}
		}
		missing := strings.Join(slots.Missing(), ", ")
		return []string{
			fmt.Sprintf("Solo necesito %s para agendar tu cita. 💅", missing),
			fmt.Sprintf("Para confirmar tu cita, necesito saber %s. ¿Me los puedes proporcionar? ✨", missing),
			fmt.Sprintf("¡Con gusto te ayudo! Solo falta %s para agendar. 💖", missing),
		}

	case IntentFAQPrice:
		if slots.Servicio != "" {
			return []string{
				fmt.Sprintf("El precio del %s varía según el tratamiento. ¿Te gustaría más detalles? 💅", slots.Servicio),
				fmt.Sprintf("Para el %s tenemos diferentes opciones. ¿Quieres que te explique los precios? ✨", slots.Servicio),
				fmt.Sprintf("¡Claro! Los precios del %s dependen de varios factores. ¿Te doy más información? 💖", slots.Servicio),
			}
		}
		return []string{
			"¿De qué servicio te gustaría saber el precio? 💅",
			"¡Con gusto te informo! ¿Qué servicio te interesa? ✨",
			"Para darte información precisa, ¿cuál es el servicio? 💖",
		}

	case IntentFAQLocation:
		return []string{
			fmt.Sprintf("📍 Ubicación: %s (%s)", studio.Name, studio.MapURL),
			fmt.Sprintf("¡Te esperamos en %s! 📍 (%s)", studio.Name, studio.MapURL),
			fmt.Sprintf("Nuestra dirección: 📍 %s (%s)", studio.Name, studio.MapURL),
		}

	case IntentGreeting:
		return []string{
			"¡Hola hermosa! 💖 ¿Te gustaría agendar unas uñas, pestañas o cejas?",
			"¡Hola! ✨ ¿En qué podemos ayudarte hoy? Uñas, pestañas, cejas...",
			"¡Hola hermosa! 🌸 ¿Listas para consentirte? ¿Uñas, pestañas o cejas?",
		}

	case IntentGratitude:
		return []string{
			fmt.Sprintf("¡Con gusto hermosa! 💖 Estamos aquí para ti en %s 🌸", studio.Name),
			"¡Es un placer ayudarte! ✨ ¡Nos vemos pronto!",
			fmt.Sprintf("¡De nada! 💅 ¡Te esperamos en %s!", studio.Name),
		}

	default:
		return []string{
			"¡Con gusto te ayudo! ¿En qué más puedo asistirte?",
			"¿Hay algo más en lo que pueda ayudarte? 💖",
			"¡Estoy aquí para ti! ¿Qué más necesitas? ✨",
		}
	}
}

func bookingConfirmation(servicio, fecha, hora, price string) string {
	var cost string
	if price != "" {
		cost = costClause(price)
	}
	return fmt.Sprintf("Perfecto 💅 Cita para *%s* el *%s* a las *%s*%s. En unos momentos confirmamos la disponibilidad de tu cita ✨",
		servicio, fecha, hora, cost)
}

func costClause(price string) string {
	return fmt.Sprintf(" (costo: %s)", price)
}

func missingInfoReply(missing []string) string {
	return fmt.Sprintf("Solo necesito %s para agendar tu cita 💅", strings.Join(missing, ", "))
}

func operatorBookingReason(fecha, hora, servicio string) string {
	return fmt.Sprintf("Cita solicitada: %s %s (%s)", orUnknown(fecha), orUnknown(hora), orUnknown(servicio))
}

func priceReply(servicio, price string) string {
	return fmt.Sprintf("El precio de *%s* es de %s 💵", servicio, price)
}

const variablePriceReply = "Ese servicio tiene precios variables. ¿Te gustaría más información?"

func locationReply(studio Studio) string {
	return fmt.Sprintf("📍 Ubicación: %s \n(%s)", studio.Name, studio.MapURL)
}

func greetingReply() string {
	return "¡Hola hermosa! 💖 ¿Te gustaría agendar unas uñas, pestañas o cejas? Cuéntame qué necesitas y para qué día."
}

func gratitudeReply(studio Studio) string {
	return fmt.Sprintf("¡Con gusto hermosa! 💖 Estamos aquí para ti en %s 🌸", studio.Name)
}

const mediaReviewReply = "¡Gracias por tu mensaje! 🙌 Moni te responderá personalmente muy pronto ✨"

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "?"
	}
	return s
}
