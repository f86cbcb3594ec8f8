// Package frame drives the UI manager from a single goroutine.
//
// Loop serializes every manager call onto its goroutine and ticks the
// Scheduler at a fixed frame rate. Scheduler runs delayed, repeating and
// progress-reporting callbacks, which is how self-dismissing UI closes itself.
//
// Example Usage:
//
//	loop := frame.NewLoop(manager, frame.NewScheduler(), logger, 60)
//	loop.Start(ctx)
//	defer loop.Stop()
//
//	err := loop.Do(ctx, func(m *ui.Manager) error {
//	    _, err := m.OpenPanel("inventory", nil)
//	    return err
//	})
package frame
