// Package confirm manages alert and confirmation dialogs.
//
// A Controller owns at most one open dialog at a time. Confirmations wrap an
// Action whose Result is either settled on return or deferred; a deferred
// confirmation stays in StateConfirming, with its dismiss affordances
// disabled, until the caller hands the outcome back through Settle.
//
// Screens depend on the Opener interface so a process-wide controller
// (Default), a screen-owned one (NewLocal), or the terminal Prompter used when
// no dialog surface exists can back the same calls.
package confirm
