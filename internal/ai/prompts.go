package ai

import "fmt"

func extractionPrompt(input, nowISO string) string {
	return fmt.Sprintf(`You are a finance assistant parser.
Current datetime (ISO-8601): %s

Task:
1) Classify intent from user message.
2) If intent is RECORD_TRANSACTION, extract transaction fields.
3) If intent is REQUEST_REPORT, infer reportPeriod when possible.
4) If intent is REQUEST_FINANCIAL_ADVICE, copy the original question into adviceQuery.

Allowed intent values:
- RECORD_TRANSACTION
- REQUEST_REPORT
- REQUEST_INSIGHT
- REQUEST_FINANCIAL_ADVICE
- HELP
- UNKNOWN

Rules:
- Return STRICT JSON only.
- No markdown, no explanation.
- Keep keys exactly:
  {
    "intent": string,
    "type": "INCOME"|"EXPENSE"|null,
    "amount": number|null,
    "category": string|null,
    "merchant": string|null,
    "note": string|null,
    "occurredAt": ISO8601 string with timezone|null,
    "reportPeriod": "daily"|"weekly"|"monthly"|null,
    "adviceQuery": string|null
  }
- If unsure, use null for fields.
- For reports, set intent=REQUEST_REPORT and set reportPeriod.
- For advice questions (financial health, affordability, spending decision), set intent=REQUEST_FINANCIAL_ADVICE and set adviceQuery.

User input:
%s`, nowISO, input)
}

func insightPrompt(summary string) string {
	return fmt.Sprintf(`You are a concise personal finance advisor.
Given summary data, produce 3 short practical insights.
Return STRICT JSON only with:
{
  "insightText": "string"
}

Summary:
%s`, summary)
}

func advicePrompt(nowISO, userQuestion, financialSnapshot string) string {
	return fmt.Sprintf(`You are a practical personal finance advisor.
Current datetime (ISO-8601): %s

Task:
- Answer the user's question with concise Indonesian text.
- Include exactly three sections in one paragraph:
  1) Deskriptif (current condition)
  2) Diagnostik (main cause/risk)
  3) Preskriptif (clear action recommendation)
- Keep the tone conversational and concrete.
- Do not promise certainty. Use prudent language.

Return STRICT JSON only:
{
  "insightText": "string"
}

User question:
%s

Financial snapshot:
%s`, nowISO, userQuestion, financialSnapshot)
}

const ocrPrompt = `Read the attached receipt or financial document image.
Return ONLY the raw text you can read from the image, line by line.
No commentary, no markdown, no JSON.`
