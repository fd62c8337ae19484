/*
Package cardid reads a unique identifier from the smart card presented at a
PC/SC reader.

A read is one session:

	channel := cardid.NewChannel(cardid.PCSC{})
	reader := cardid.NewReader(channel, cardid.Cepas)

	id, err := reader.ReadIdentifier(ctx)
	if errors.Is(err, cardid.ErrCardAbsent) {
	    // ask the user to present a card
	}

The Profile decides which APDUs are sent and how the final response is
decoded:
  - Generic sends the PC/SC GET DATA (UID) pseudo-APDU and returns the UID as
    colon-separated hex ("DE:AD:BE:EF").
  - Cepas selects the CEPAS applet, reads the purse record and returns the CAN
    (16 hex digits, no separator). The CSN is exposed as Identifier.Secondary.

Every failure is an *Error carrying a Kind; match them with errors.Is against
the Err* sentinels. The card session is always released before ReadIdentifier
returns.
*/
package cardid
