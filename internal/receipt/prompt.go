package receipt

// extractionPrompt instructs the vision model to read a receipt image and
// answer with the structured JSON document ParseResponse expects.
const extractionPrompt = `Extract detailed information from the receipt image, including itemized entries and totals, and provide the data in a structured JSON format.

Receipts vary significantly in format and may come from restaurants, retail stores, or services. Capture both the overall receipt details and the individual line items accurately.

Return exactly this JSON structure:

{
  "vendor_info": {
    "name": "[Vendor Name]",
    "location": "[Location if available]",
    "date": "[Transaction Date]",
    "time": "[Transaction Time]"
  },
  "line_items": [
    {
      "item_name": "[Item Description]",
      "quantity": "[Quantity]",
      "unit_price": "[Price per Unit]",
      "subtotal": "[Item Subtotal]",
      "notes": "[Any modifiers or special instructions]"
    }
  ],
  "additional_charges": [
    {
      "charge_name": "[Name of Fee/Charge]",
      "amount": "[Amount]"
    }
  ],
  "totals": {
    "subtotal": "[Subtotal before tax/fees]",
    "tax": "[Tax Amount]",
    "tip": "[Tip Amount if applicable]",
    "tip_percentage": "[Tip Percentage if applicable]",
    "total": "[Final Total]"
  }
}

Rules:
- Output JSON only, no code fences, no extra text.
- All monetary values are decimal numbers without currency symbols.
- Quantities are numeric; if not explicitly stated, assume 1.
- For missing or unclear values use null rather than guessing.
- Service charges, delivery fees, and other miscellaneous fees go in additional_charges, each listed separately.
- Capture modifiers or special instructions in the line item's "notes" field.`
