// Package automation validates automation blocks and emits their trigger,
// automation and action objects.
//
// An automation owns a Trigger<Ts...> and an Automation<Ts...>, where Ts are
// the types of its runtime arguments. Each action is emitted by the handler
// registered for its name and the resulting objects are attached to the
// automation in declaration order.
package automation
