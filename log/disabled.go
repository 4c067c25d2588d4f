// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package log

type disabledLogger struct{}

// Disabled is a Logger that discards every message. It is the default
// for every subsystem until UseLogger is called.
var Disabled Logger = &disabledLogger{}

func (disabledLogger) Tracef(string, ...interface{})    {}
func (disabledLogger) Debugf(string, ...interface{})    {}
func (disabledLogger) Infof(string, ...interface{})     {}
func (disabledLogger) Warnf(string, ...interface{})     {}
func (disabledLogger) Errorf(string, ...interface{})    {}
func (disabledLogger) Criticalf(string, ...interface{}) {}

func (disabledLogger) Trace(...interface{})    {}
func (disabledLogger) Debug(...interface{})    {}
func (disabledLogger) Info(...interface{})     {}
func (disabledLogger) Warn(...interface{})     {}
func (disabledLogger) Error(...interface{})    {}
func (disabledLogger) Critical(...interface{}) {}

func (disabledLogger) Level() Level       { return LevelOff }
func (disabledLogger) SetLevel(Level)     {}
