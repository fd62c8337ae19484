package iso7816

// GET DATA (UID) as defined by PC/SC Part 3 for contactless readers.
//
// The reader answers the pseudo-APDU 'FF CA 00 00 00' itself with the UID
// of the card in the field (P1=00) or its historical bytes (P1=01).
// Le=00 asks for the full value.

const (
	GetDataUID             byte = 0x00
	GetDataHistoricalBytes byte = 0x01
)

// GetUID builds the PC/SC GET DATA command returning the card UID.
func GetUID() *CommandAPDU {
	return NewCommandAPDU(PCSCClass, MustInstruction(INS_GET_DATA), GetDataUID, 0x00, nil, MaxShortLe)
}

// GetHistoricalBytes builds the PC/SC GET DATA command returning the ATS historical bytes.
func GetHistoricalBytes() *CommandAPDU {
	return NewCommandAPDU(PCSCClass, MustInstruction(INS_GET_DATA), GetDataHistoricalBytes, 0x00, nil, MaxShortLe)
}
