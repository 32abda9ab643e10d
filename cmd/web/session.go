package main

// pitchSessionKey is the scs session key holding the ID of the browser's open
// pitch session.
const pitchSessionKey = "pitchSessionID"
