package cardid

import (
	"github.com/gregLibert/card-id/pkg/iso7816"
)

// StepResult is the conversation held with the card for one Step,
// including any GET RESPONSE or Le correction the client performed.
type StepResult struct {
	Step  Step
	Trace iso7816.Trace
}

// ExchangeOptions tunes status word validation.
type ExchangeOptions struct {
	// StrictIntermediate fails the exchange when a step before the last one
	// ends with a non-9000 status. Otherwise only the final step is checked.
	StrictIntermediate bool
}

// Exchange runs steps in order through client.
//
// A transport failure aborts the sequence: later steps are not sent.
// The final step must end with SW 9000. On success the final response data
// is returned with the status word removed. The results of every step that
// reached the card are returned in all cases.
func Exchange(client *iso7816.Client, steps []Step, opts ExchangeOptions) ([]byte, []StepResult, error) {
	results := make([]StepResult, 0, len(steps))

	for i, step := range steps {
		trace, err := client.Send(step.Command)
		if len(trace) > 0 {
			results = append(results, StepResult{Step: step, Trace: trace})
		}
		if err != nil {
			return nil, results, &Error{Kind: KindTransmit, Step: step.Name, Err: err}
		}

		final := i == len(steps)-1
		if (final || opts.StrictIntermediate) && trace.Status() != iso7816.SW_NO_ERROR {
			return nil, results, &Error{Kind: KindStatusWord, Step: step.Name, Status: trace.Status()}
		}

		if final {
			return trace.Data(), results, nil
		}
	}

	return nil, results, nil
}
