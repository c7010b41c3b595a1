package quiz

// Apply validates cmd against the room's state and the caller's role, and
// returns the events to fan out plus the updated room. The input room is
// never mutated; on error the returned room equals the input.
func Apply(r Room, cmd Command) ([]Event, Room, error) {
	newRoom := r

	// Join is the only command open to non-directors. Everything else is
	// gated on the owning connection; the hub keeps rejections off the wire.
	if cmd.Type != CmdJoin && cmd.Actor != r.Director {
		return nil, r, ErrUnauthorized
	}

	switch cmd.Type {
	case CmdJoin:
		// Duplicate candidate ids are allowed, matching the permissive
		// join behavior clients rely on for reconnects.
		newRoom.Candidates = append(append([]string{}, r.Candidates...), cmd.CandidateID)
		return []Event{{
			Type:           EvtCandidateJoined,
			CandidateID:    cmd.CandidateID,
			CandidateCount: len(newRoom.Candidates),
			Settings:       newRoom.Settings,
		}}, newRoom, nil

	case CmdUpdateSettings:
		newRoom.Settings = cmd.Settings.Resolve()
		return []Event{{Type: EvtSettingsUpdated, Settings: newRoom.Settings}}, newRoom, nil

	case CmdStartCountdown:
		timeLeft := cmd.TimeLeft
		if timeLeft <= 0 {
			timeLeft = r.Settings.DurationSeconds
		}
		return []Event{{Type: EvtCountdownStarted, TimeLeft: timeLeft}}, newRoom, nil

	case CmdStartGame:
		if len(cmd.Items) > 0 {
			newRoom.Items = cmd.Items
		}
		if len(newRoom.Items) == 0 {
			return nil, r, ErrNoItems
		}
		newRoom.Phase = PhaseActive
		newRoom.CurrentIndex = 0
		newRoom.RecognizedCount = 0
		newRoom.TimeLeft = newRoom.Settings.DurationSeconds
		return []Event{{
			Type: EvtGameStarted,
			Item: newRoom.Items[0],
		}}, newRoom, nil

	case CmdAdvance:
		if r.Phase != PhaseActive {
			return nil, r, ErrNotActive
		}
		newRoom.CurrentIndex++
		if newRoom.CurrentIndex < len(newRoom.Items) {
			return []Event{{
				Type:  EvtItemUpdated,
				Item:  newRoom.Items[newRoom.CurrentIndex],
				Index: newRoom.CurrentIndex,
			}}, newRoom, nil
		}
		newRoom.Phase = PhaseEnded
		return []Event{{Type: EvtGameEnded}}, newRoom, nil

	case CmdRecordResult:
		newRoom.RecognizedCount++
		return []Event{{
			Type:            EvtResultSaved,
			RecognizedCount: newRoom.RecognizedCount,
		}}, newRoom, nil

	case CmdSyncTimer:
		// The director's clock is authoritative; candidates never count
		// down on their own.
		newRoom.TimeLeft = cmd.TimeLeft
		newRoom.CurrentIndex = cmd.CurrentIndex
		newRoom.RecognizedCount = cmd.RecognizedCount
		return []Event{{
			Type:            EvtTimerSynced,
			TimeLeft:        newRoom.TimeLeft,
			Index:           newRoom.CurrentIndex,
			RecognizedCount: newRoom.RecognizedCount,
		}}, newRoom, nil

	default:
		return nil, r, ErrUnsupportedCommand
	}
}
