package mediathek

// Close stops auto updates and waits for a running background refresh.
// The client still answers queries after Close.
func (c *client) Close() error {
	if err := c.AutoUpdatesOff(); err != nil {
		return err
	}

	c.autoMu.Lock()
	done := c.autoDone
	c.autoMu.Unlock()
	if done != nil {
		<-done
	}

	c.worker.Wait()
	return nil
}
