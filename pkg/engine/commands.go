package engine

import (
	"path/filepath"

	"github.com/arthur-debert/fsbridge/pkg/errors"
	"github.com/arthur-debert/fsbridge/pkg/protocol"
)

// HandleLine decodes and executes one controller line
func (e *Engine) HandleLine(line string) error {
	command, args := protocol.Decode(line)
	e.logger.Debug().Msgf("<< %s", line)

	switch command {
	case "", protocol.CmdDone:
		return nil
	case protocol.CmdDebug:
		e.onDebug()
		return nil
	case protocol.CmdVersion:
		return e.version(args)
	}

	if !isKnown(command) {
		return errors.Newf(errors.ErrUnknownCommand, "Unexpected cmd: %s", command).
			WithDetail("command", command)
	}
	if !e.negotiated {
		return errors.Newf(errors.ErrProtocol, "expected %s before %s", protocol.CmdVersion, command).
			WithDetail("command", command)
	}

	switch command {
	case protocol.CmdStart:
		return e.start(args)
	case protocol.CmdLink:
		return e.link(args)
	case protocol.CmdDir:
		return e.out.Send(protocol.RespOK)
	case protocol.CmdWait:
		return e.wait(args)
	case protocol.CmdChanges:
		return e.changes(args)
	default:
		return e.reset(args)
	}
}

func isKnown(command string) bool {
	switch command {
	case protocol.CmdStart, protocol.CmdLink, protocol.CmdDir, protocol.CmdWait,
		protocol.CmdChanges, protocol.CmdReset:
		return true
	}
	return false
}

func requireArgs(command string, args []string, n int) error {
	if len(args) < n {
		return errors.Newf(errors.ErrProtocol, "%s expects %d argument(s), got %d", command, n, len(args)).
			WithDetail("command", command)
	}
	return nil
}

func (e *Engine) version(args []string) error {
	if err := requireArgs(protocol.CmdVersion, args, 1); err != nil {
		return err
	}
	if args[0] != protocol.Version {
		return errors.Newf(errors.ErrVersionMismatch, "Unexpected version: %q", args[0]).
			WithDetail("version", args[0])
	}
	e.negotiated = true
	return nil
}

// start registers a replica. Re-sending START for an id with the same root
// is a no-op beyond the acknowledgement; a different root replaces the old
// registration and discards its pending changes.
func (e *Engine) start(args []string) error {
	if err := requireArgs(protocol.CmdStart, args, 2); err != nil {
		return err
	}
	id := args[0]
	root, err := filepath.Abs(args[1])
	if err != nil {
		return errors.Wrapf(err, errors.ErrProtocol, "invalid replica root %s", args[1])
	}

	previous, registered := e.replicas[id]
	switch {
	case registered && previous == root:
		e.logger.Debug().Str("replica", id).Str("root", root).Msg("Replica already registered")
	case registered:
		if err := e.watcher.Watch(root); err != nil {
			return err
		}
		if err := e.watcher.Unwatch(previous); err != nil {
			return err
		}
		delete(e.pending, id)
		e.logger.Info().Str("replica", id).Str("root", root).Str("previous", previous).Msg("Replica moved")
	default:
		if err := e.watcher.Watch(root); err != nil {
			return err
		}
		delete(e.pending, id)
		e.logger.Info().Str("replica", id).Str("root", root).Msg("Replica registered")
	}

	e.replicas[id] = root
	e.active = root
	return e.out.Send(protocol.RespOK)
}

func (e *Engine) link(args []string) error {
	if err := requireArgs(protocol.CmdLink, args, 1); err != nil {
		return err
	}
	if e.active == "" {
		return errors.New(errors.ErrProtocol, "LINK without an active replica")
	}

	alias := args[0]
	if !filepath.IsAbs(alias) {
		alias = filepath.Join(e.active, alias)
	}
	target, err := e.fs.EvalSymlinks(alias)
	if err != nil {
		return errors.Wrapf(err, errors.ErrResolve, "cannot resolve link %s", alias).
			WithDetail("link", alias)
	}

	aliases, ok := e.links[target]
	if !ok {
		if err := e.watcher.Watch(target); err != nil {
			return err
		}
		aliases = make(pathSet)
		e.links[target] = aliases
	}
	aliases[alias] = struct{}{}
	e.logger.Info().Str("link", alias).Str("target", target).Msg("Following link")

	return e.out.Send(protocol.RespOK)
}

func (e *Engine) wait(args []string) error {
	if err := requireArgs(protocol.CmdWait, args, 1); err != nil {
		return err
	}
	if _, ok := e.replicas[args[0]]; !ok {
		return unknownReplica(protocol.CmdWait, args[0])
	}
	return nil
}

func (e *Engine) changes(args []string) error {
	if err := requireArgs(protocol.CmdChanges, args, 1); err != nil {
		return err
	}
	paths := e.drain(args[0])
	for _, p := range paths {
		if err := e.out.Send(protocol.RespRecursive, p); err != nil {
			return err
		}
	}
	e.logger.Debug().Str("replica", args[0]).Int("paths", len(paths)).Msg("Changes reported")
	return e.out.Send(protocol.CmdDone)
}

func (e *Engine) reset(args []string) error {
	if err := requireArgs(protocol.CmdReset, args, 1); err != nil {
		return err
	}
	id := args[0]
	root, ok := e.replicas[id]
	if !ok {
		return unknownReplica(protocol.CmdReset, id)
	}
	if err := e.watcher.Unwatch(root); err != nil {
		return err
	}
	delete(e.replicas, id)
	delete(e.pending, id)
	if e.active == root && !e.rootInUse(root) {
		e.active = ""
	}
	e.logger.Info().Str("replica", id).Str("root", root).Msg("Replica reset")
	return nil
}

func (e *Engine) rootInUse(root string) bool {
	for _, r := range e.replicas {
		if r == root {
			return true
		}
	}
	return false
}
