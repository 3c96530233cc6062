// Package custody is the composition root for the custody service.
//
// It wires the ownership and access-control state machine in pkg/core to
// its adapters (key generation, record obscuring, transaction references)
// using functional options, the same way for library users and for the
// custody CLI.
//
// Model:
//
// One owner holds a single shared record. Collaborating systems ask for read
// or write access, the owner grants, denies or revokes it, and every loaded
// copy is shown obscured to a system that cannot read it. Ownership moves to
// a generated candidate wallet, leaving the old owner behind as a frozen,
// read-only snapshot. Every state change lands on an append-only timeline.
//
// Usage:
//
//	svc, err := custody.New(custody.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	_, err = svc.Connect("Alice")
//	_, err = svc.CreateRecord("Deed", "Lot 42", custody.NewMetadata("zone", "R1"))
package custody
