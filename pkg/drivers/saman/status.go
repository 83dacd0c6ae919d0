package saman

import "github.com/cassiomorais/multipay/pkg/gateway"

const unknownStatusMessage = "an unexpected error occurred during the transaction"

// purchaseStatuses maps the bank's token/purchase rejection codes to
// messages. The classic and OnlinePG flows share the bank's code space, so
// both adapters consult the same table.
var purchaseStatuses = gateway.StatusMap{
	Fallback: unknownStatusMessage,
	Messages: map[string]string{
		"0":   "the transaction was declined by the issuer",
		"-1":  "the transaction was cancelled by the payer, or left pending",
		"-3":  "invalid inputs were sent to the web service",
		"-4":  "merchant authentication failed",
		"-6":  "the reversal window of thirty minutes has elapsed",
		"-7":  "invalid receipt data",
		"-8":  "the input length exceeds the permitted size",
		"-9":  "the receipt contains invalid characters",
		"-10": "the receipt is not valid Base64",
		"-11": "the input length is below the permitted size",
		"-12": "the amount is invalid",
		"-13": "the reversal amount does not match the registered transaction",
		"-14": "the transaction was not found",
		"-15": "the amount must be sent as a number",
		"-16": "internal system error",
		"-17": "reversal is not allowed for transactions of this origin",
		"-18": "the caller IP address is invalid",
		"1":   "the card issuer declined the transaction",
		"2":   "the transaction was already confirmed",
		"3":   "the merchant is invalid",
		"4":   "the card has been captured",
		"5":   "the transaction was not processed",
		"8":   "the caller IP is not registered for this terminal",
		"10":  "the entered amount is invalid",
		"11":  "an unexpected system failure occurred; please retry the payment",
		"12":  "the requested terminal is inactive",
		"14":  "the card number is invalid",
		"15":  "the issuing bank is unavailable",
		"16":  "the transaction was approved but the settlement amount is insufficient",
		"19":  "the transaction must be repeated",
		"23":  "a security violation was detected",
		"30":  "the message format is invalid",
		"31":  "a response field is missing or invalid",
		"33":  "the card has expired; please use another card",
		"34":  "the CVV2 or expiry date was entered incorrectly",
		"38":  "the PIN was entered incorrectly more than the permitted three attempts; the card is blocked",
		"39":  "no matching debit account was found for the card",
		"40":  "the requested operation is not supported",
		"41":  "the card was reported lost",
		"42":  "no matching savings account was found for the card",
		"43":  "no matching credit account was found for the card",
		"44":  "no matching investment account was found for the card",
		"51":  "the card balance is insufficient",
		"52":  "no matching cheque account was found for the card",
		"53":  "no matching savings account was found for the card",
		"54":  "the card expiry date has passed",
		"55":  "the card PIN was entered incorrectly",
		"56":  "the card was not found",
		"57":  "the card holder is not permitted to perform this transaction",
		"58":  "the terminal is not permitted to perform this transaction",
		"61":  "the transaction amount exceeds the permitted ceiling",
		"62":  "the card is restricted",
		"63":  "a security violation was detected on the card",
		"65":  "the number of daily transactions exceeds the permitted count",
		"68":  "the transaction timed out on the banking network",
		"75":  "the number of PIN attempts exceeds the permitted count",
		"79":  "the purchase amount exceeds the bank's transaction ceiling",
		"84":  "the card issuing bank is out of service; please try again later",
		"90":  "the issuing bank is performing end-of-day processing",
		"93":  "the transaction was authorized (PIN and PAN are correct) but no response arrived from the issuer",
		"96":  "a system failure occurred while performing the transaction",
	},
}

// verifyStatuses maps the bank's verification error codes to messages. The
// verification code space is independent of the purchase one.
var verifyStatuses = gateway.StatusMap{
	Fallback: unknownStatusMessage,
	Messages: map[string]string{
		"-1":  "the transaction was cancelled by the payer, or left pending",
		"-3":  "invalid inputs were sent to the web service",
		"-4":  "merchant authentication failed",
		"-6":  "the reversal window of thirty minutes has elapsed",
		"-7":  "invalid receipt data",
		"-8":  "the input length exceeds the permitted size",
		"-9":  "the receipt contains invalid characters",
		"-10": "the receipt is not valid Base64",
		"-11": "the input length is below the permitted size",
		"-12": "the amount is invalid",
		"-13": "the reversal amount does not match the registered transaction",
		"-14": "the transaction was not found",
		"-15": "the amount must be sent as a number",
		"-16": "internal system error",
		"-17": "reversal is not allowed for transactions of this origin",
		"-18": "the caller IP address is invalid, or the transaction was already reversed",
	},
}
