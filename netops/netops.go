// Package netops implements the queue-shaping and lease-management
// operations the billing pipeline pushes to routers. Each operation is a
// short sequence of control-plane commands over an authenticated
// rosapi.Session; there is no state kept between calls.
package netops

import (
	"fmt"

	"github.com/ispgear/rosbridge/rosapi"
	"github.com/ispgear/rosbridge/rosproto"
)

// QueueSet ensures a simple queue with the given name exists, targets the
// given address, and enforces maxLimit (an "upload/download" rate pair).
// An existing queue is updated in place; otherwise one is added.
func QueueSet(sess *rosapi.Session, name, target, maxLimit string) error {
	ids, err := findIDs(sess, rosproto.NewCommand("/queue/simple/print").Filter("name", name))
	if err != nil {
		return fmt.Errorf("queue lookup %q: %w", name, err)
	}

	if len(ids) == 0 {
		cmd := rosproto.NewCommand("/queue/simple/add").
			Attr("name", name).
			Attr("target", target).
			Attr("max-limit", maxLimit)

		if _, err := sess.Run(cmd); err != nil {
			return fmt.Errorf("queue add %q: %w", name, err)
		}

		return nil
	}

	cmd := rosproto.NewCommand("/queue/simple/set").
		Attr(".id", ids[0]).
		Attr("target", target).
		Attr("max-limit", maxLimit)

	if _, err := sess.Run(cmd); err != nil {
		return fmt.Errorf("queue set %q: %w", name, err)
	}

	return nil
}

// QueueRemove removes the simple queue with the given name.
// A queue that does not exist is a no-op success.
func QueueRemove(sess *rosapi.Session, name string) error {
	ids, err := findIDs(sess, rosproto.NewCommand("/queue/simple/print").Filter("name", name))
	if err != nil {
		return fmt.Errorf("queue lookup %q: %w", name, err)
	}

	for _, id := range ids {
		cmd := rosproto.NewCommand("/queue/simple/remove").Attr(".id", id)
		if _, err := sess.Run(cmd); err != nil {
			return fmt.Errorf("queue remove %q: %w", name, err)
		}
	}

	return nil
}

// LeaseRemove removes every DHCP server lease bound to the given address.
// An address with no lease is a no-op success.
func LeaseRemove(sess *rosapi.Session, address string) error {
	ids, err := findIDs(sess, rosproto.NewCommand("/ip/dhcp-server/lease/print").Filter("address", address))
	if err != nil {
		return fmt.Errorf("lease lookup %q: %w", address, err)
	}

	for _, id := range ids {
		cmd := rosproto.NewCommand("/ip/dhcp-server/lease/remove").Attr(".id", id)
		if _, err := sess.Run(cmd); err != nil {
			return fmt.Errorf("lease remove %q: %w", address, err)
		}
	}

	return nil
}

// findIDs runs a print command and collects the ".id" attribute of every
// data reply.
func findIDs(sess *rosapi.Session, cmd *rosproto.Command) ([]string, error) {
	replies, err := sess.Run(cmd)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, r := range replies {
		if r.Type != rosproto.DataReply {
			continue
		}
		if id, ok := r.Attr(".id"); ok {
			ids = append(ids, id)
		}
	}

	return ids, nil
}
