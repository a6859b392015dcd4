package llm

import "strings"

func BuildExtractionPrompt(message string, menuNames []string) string {
	var b strings.Builder

	b.WriteString(`
You are a data extraction engine for a restaurant ordering system.
Customers write in Spanish, English or Chinese.

Your task:
- Extract every ordered item from the customer message into STRICT JSON.
- Output MUST be valid JSON.
- Output MUST start with { and end with }.
- Output MUST contain ONLY JSON.
- NO explanations.
- NO markdown.
- NO comments.
- NO extra text.

Rules:
- Preserve the customer's own wording in "alias" (lowercase, no punctuation).
- Keep modifiers ("extra", "poco", "no", "sin", "cambio") as separate lines
  right after the item they apply to, in the order spoken.
- When the customer splits chicken pieces by cut (cadera, muro, pechuga),
  emit one line per cut with "part_hint" set to the cut name and "quantity"
  set to the piece count.
- If no quantity is spoken, use 1.
- Set "per_unit" true only when a modifier is clearly meant once per item
  ("extra salsa en cada una").

If the message contains no order, return this exact JSON:
{
  "lines": []
}

Required JSON schema:
{
  "lines": [
    {
      "alias": "string",
      "quantity": number,
      "per_unit": boolean,
      "part_hint": "string"
    }
  ]
}
`)

	if len(menuNames) > 0 {
		b.WriteString("\nMENU ITEMS (match aliases against these when obvious):\n")
		for _, name := range menuNames {
			b.WriteString("- " + name + "\n")
		}
	}

	b.WriteString("\nCUSTOMER MESSAGE:\n")
	b.WriteString(message)

	return b.String()
}
