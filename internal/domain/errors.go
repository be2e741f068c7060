package domain

import "errors"

var (
	// ErrMissingProductField is returned when a store search result lacks a
	// required field (id or price) - a store API contract break.
	ErrMissingProductField = errors.New("store search result is missing a required field")

	// ErrAssistantRunFailed is returned when an assistant run ends in a
	// terminal state other than completed.
	ErrAssistantRunFailed = errors.New("assistant run did not complete")

	// ErrAssistantTimeout is returned when an assistant run does not reach a
	// terminal state within the polling deadline.
	ErrAssistantTimeout = errors.New("assistant run polling timed out")

	// ErrUnknownProductID is returned when the assistant picks a product id
	// that was not in the candidate set it was given.
	ErrUnknownProductID = errors.New("assistant chose a product id outside the candidate set")

	// ErrMalformedReply is returned when the assistant's reply cannot be
	// decoded into a choice.
	ErrMalformedReply = errors.New("assistant reply is malformed")

	// ErrStoreAPIFailure is returned when a store API request fails.
	ErrStoreAPIFailure = errors.New("store API request failed")

	// ErrTaskAPIFailure is returned when a task service request fails.
	ErrTaskAPIFailure = errors.New("task service request failed")

	// ErrNotionAPIFailure is returned when a Notion API request fails.
	ErrNotionAPIFailure = errors.New("notion API request failed")

	// ErrNoDeliveryWindow is returned when no reservable delivery window
	// matches any preferred start time.
	ErrNoDeliveryWindow = errors.New("no delivery window found")
)
