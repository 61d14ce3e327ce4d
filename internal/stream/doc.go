// Package stream provides the timed sources the harness drives: Cold and Hot.
//
// Both replay a compiled timeline through a VirtualClock and keep one
// ir.SubscriptionLog per Subscribe call. A log opens at the frame of the
// subscription and closes once, at the frame the subscription is torn down,
// either by Unsubscribe or after a terminal notification was delivered.
//
// Cold sources start their timeline at each subscriber's subscription frame.
// Hot sources play their timeline once, on absolute frames, after Start.
package stream
