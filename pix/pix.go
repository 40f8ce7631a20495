// Package pix builds the display string for PIX payments. The payload is
// simulated: the key is random and the checksum tail is faked, mirroring the
// demo checkout this replaces. Settlement never happens here.
package pix

import (
	"fmt"
	"math/rand"
	"strconv"
)

func emv(tag, value string) string {
	return fmt.Sprintf("%s%02d%s", tag, len(value), value)
}

// Payload assembles an EMV-style BR-Code string carrying a random key, the
// order amount, the merchant name and city, and a random 4-digit tail in
// place of a real CRC.
func Payload(amount float64, merchantName, city string) string {
	key := fmt.Sprintf("%011d", rand.Int63n(100_000_000_000))
	account := emv("00", "BR.GOV.BCB.PIX") + emv("01", key)

	code := emv("00", "01") +
		emv("26", account) +
		emv("52", "0000") +
		emv("53", "986") +
		emv("54", strconv.FormatFloat(amount, 'f', 2, 64)) +
		emv("58", "BR") +
		emv("59", merchantName) +
		emv("60", city) +
		emv("62", emv("05", "***"))

	return code + "6304" + fmt.Sprintf("%04d", rand.Intn(10000))
}
