/*
Package resilience provides a circuit breaker for operations that keep failing.

The host uses breakers in two places: each script template has one, so a
script whose hooks keep throwing or timing out is quarantined and refused
construction for a cooldown, and each remote catalog URL has one, so a dead
catalog server is not polled on every interval.

# States

- Closed: attempts pass through
- Open: attempts are refused until the cooldown elapses
- Half-Open: a limited number of probes are admitted

	Closed --[Threshold failures]-> Open --[Cooldown]-> Half-Open --[success]-> Closed
	                                                        |
	                                                    [failure]
	                                                        v
	                                                       Open

# Usage

	group := resilience.NewGroup(resilience.Settings{Threshold: 3, Cooldown: 30 * time.Second})

	b := group.Get("script:inventory")
	if err := b.Allow(); err != nil {
		return err
	}
	// ... later, per outcome
	b.Failure()
*/
package resilience
