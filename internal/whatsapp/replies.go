package whatsapp

import (
	"fmt"
	"strings"

	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/order"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/pos"
)

func money(cents int64) string {
	return fmt.Sprintf("$%.2f", pos.Dollars(cents))
}

func greetingReply(name string) string {
	if name != "" {
		return fmt.Sprintf("¡Hola %s! Bienvenido a Kong Food. ¿Qué desea ordenar hoy?", name)
	}
	return "¡Hola! Bienvenido a Kong Food. ¿Qué desea ordenar hoy?"
}

func summaryReply(ord *order.Order, taxCents, totalCents int64) string {
	var b strings.Builder
	b.WriteString("Su pedido:\n")

	for _, line := range ord.Lines {
		switch line.Kind {
		case order.KindMain:
			fmt.Fprintf(&b, "%d x %s  %s\n", line.Quantity, line.Name, money(line.PriceCents*int64(line.Quantity)))
		case order.KindSide:
			fmt.Fprintf(&b, "   incluye %s\n", line.Name)
		case order.KindModifier:
			if line.PriceCents > 0 {
				fmt.Fprintf(&b, "   + %s  %s\n", line.Name, money(line.PriceCents*int64(line.Quantity)))
			} else {
				fmt.Fprintf(&b, "   + %s\n", line.Name)
			}
		case order.KindPart:
			fmt.Fprintf(&b, "   %d %s\n", line.Quantity, line.Name)
		}
	}

	fmt.Fprintf(&b, "\nSubtotal: %s\n", money(ord.SubtotalCents))
	fmt.Fprintf(&b, "Impuesto: %s\n", money(taxCents))
	fmt.Fprintf(&b, "Total: %s\n\n", money(totalCents))
	b.WriteString("¿Confirma su pedido? (sí / no)")

	return b.String()
}

func clarificationReply(clar *order.ClarificationRequest) string {
	var b strings.Builder
	b.WriteString("Necesito aclarar algo antes de continuar:\n")

	for _, p := range clar.Problems {
		switch p.Reason {
		case order.ReasonAmbiguousSize:
			fmt.Fprintf(&b, "- \"%s\" tiene varias opciones: %s. ¿Cuál prefiere?\n",
				p.Alias, candidateNames(p))
		case order.ReasonUnknownAlias:
			fmt.Fprintf(&b, "- No encontré \"%s\" en el menú. ¿Puede decirlo de otra forma?\n", p.Alias)
		case order.ReasonInvalidPartSplit:
			fmt.Fprintf(&b, "- Las presas de \"%s\" no suman la cantidad del combo. ¿Cómo las reparto?\n", p.Alias)
		case order.ReasonZeroQuantity:
			fmt.Fprintf(&b, "- ¿Cuántos de \"%s\" desea?\n", p.Alias)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func candidateNames(p order.Problem) string {
	names := make([]string, 0, len(p.Candidates))
	for _, c := range p.Candidates {
		names = append(names, c.Display)
	}
	if len(names) == 0 {
		return "varias"
	}
	return strings.Join(names, ", ")
}

func confirmedReply(receiptID string, totalCents int64) string {
	return fmt.Sprintf(
		"✅ Pedido confirmado. Recibo %s.\nTotal: %s\nSu orden estará lista en 15-20 minutos. ¡Gracias!",
		receiptID, money(totalCents),
	)
}

func cancelledReply() string {
	return "Pedido cancelado. Cuando quiera ordenar de nuevo, escríbame."
}

func repromptConfirmReply() string {
	return "Por favor responda sí para confirmar o no para cancelar."
}

func notUnderstoodReply() string {
	return "No entendí su pedido. ¿Puede repetirlo? Por ejemplo: \"2 pollo naranja con tostones\"."
}

func unavailableReply() string {
	return "El sistema no está disponible en este momento. Intente de nuevo en unos minutos."
}
