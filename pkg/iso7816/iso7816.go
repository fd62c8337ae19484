/*
Package iso7816 implements the APDU building blocks used to talk to smart cards
according to ISO/IEC 7816-3 and 7816-4.

It covers Command and Response APDUs, Status Word (SW) analysis, and a Client
that hides the T=0 transport procedures (61XX, 6CXX) from callers.

# Fundamentals

Communication with a smart card is strictly synchronous:
 1. The Host sends a Command APDU (Header + Optional Body).
 2. The Card processes it and returns a Response APDU (Optional Body + Trailer SW1/SW2).

# Status Words

Every response ends with a 2-byte Status Word (SW).
  - 0x9000: Success (OK).
  - 0x61XX: Success, but response data is still available (XX bytes).
  - 0x6CXX: Error, wrong length expectation (XX is the correct length).
  - Other: Various error conditions.

# Proprietary Commands

Two command families used by identifier readers fall outside ISO encoding rules:
  - PC/SC pseudo-APDUs (CLA 'FF'), answered by the reader. See GetUID.
  - Card-specific commands with fixed byte strings, such as CEPAS READ PURSE.
    See NewRawCommand.

# Usage Example

	client := iso7816.NewClient(card)

	trace, err := client.Send(iso7816.GetUID())
	if err != nil {
	    log.Fatal(err)
	}

	if trace.Status() != iso7816.SW_NO_ERROR {
	    log.Fatalf("GET DATA failed: %s", trace.Status().Verbose())
	}

	fmt.Printf("UID: %X\n", trace.Data())
*/
package iso7816
